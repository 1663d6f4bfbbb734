package state

import "sync"

type Service int

const (
	Redis Service = iota
	MQTT
)

func (s Service) String() string {
	switch s {
	case Redis:
		return "redis"
	case MQTT:
		return "mqtt"
	}
	return "unknown"
}

type State struct {
	sync.RWMutex

	Redis bool
	MQTT  bool
}

func NewState() *State {
	return &State{
		Redis: true,
		MQTT:  true,
	}
}

func (s *State) Get(svc Service) bool {
	s.RLock()
	defer s.RUnlock()
	{
		switch svc {
		case Redis:
			return s.Redis

		case MQTT:
			return s.MQTT
		}
	}
	return false
}

func (s *State) Set(svc Service, state bool) {
	s.Lock()
	defer s.Unlock()
	{
		switch svc {
		case Redis:
			s.Redis = state

		case MQTT:
			s.MQTT = state
		}
	}
}
