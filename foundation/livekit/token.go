package livekit

import (
	"errors"
	"time"

	"github.com/livekit/protocol/auth"
)

// SignToken issues an access token that lets identity join room, publish
// its camera and subscribe to everybody else.
func SignToken(key, secret, room, identity, name string, lifetime time.Duration) (string, error) {
	if key == "" || secret == "" {
		return "", errors.New("livekit: api key and secret are required")
	}
	if identity == "" {
		return "", errors.New("livekit: identity is required")
	}

	canPublish := true
	canSubscribe := true

	at := auth.NewAccessToken(key, secret)
	grant := &auth.VideoGrant{
		RoomJoin:     true,
		Room:         room,
		CanPublish:   &canPublish,
		CanSubscribe: &canSubscribe,
	}

	at.AddGrant(grant).SetIdentity(identity).SetValidFor(lifetime)
	if len(name) > 0 {
		at.SetName(name)
	}

	return at.ToJWT()
}

// SignObserverToken issues the token the watcher joins with. The observer is
// hidden from the other participants and cannot publish.
func SignObserverToken(key, secret, room, identity string, lifetime time.Duration) (string, error) {
	if key == "" || secret == "" {
		return "", errors.New("livekit: api key and secret are required")
	}
	if identity == "" {
		return "", errors.New("livekit: identity is required")
	}

	canPublish := false
	canPublishData := false

	at := auth.NewAccessToken(key, secret)
	grant := &auth.VideoGrant{
		RoomJoin:       true,
		Room:           room,
		Hidden:         true,
		CanPublish:     &canPublish,
		CanPublishData: &canPublishData,
	}

	at.AddGrant(grant).SetIdentity(identity).SetValidFor(lifetime)

	return at.ToJWT()
}
