// Package faceapi talks to the Azure Face API to get the emotion scores of
// the faces in an image.
package faceapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	apiTimeout = 15

	detectPath    = "/face/v1.0/detect"
	recognizePath = "/emotion/v1.0/recognize"
)

type Mode string

const (
	Detect    Mode = "detect"
	Recognize Mode = "recognize"
)

var ErrNoFace = errors.New("faceapi: no face in image")

type StatusError struct {
	StatusCode int
	Detail     ErrorDetail
	Body       string
}

func (e *StatusError) Error() string {
	if e.Detail.Message != "" {
		return fmt.Sprintf("faceapi: status %d: %s: %s", e.StatusCode, e.Detail.Code, e.Detail.Message)
	}
	return fmt.Sprintf("faceapi: status %d: %s", e.StatusCode, e.Body)
}

type Client struct {
	endpoint string
	apiKey   string
	mode     Mode
	http     *http.Client
}

func New(endpoint, apiKey string, mode Mode) (*Client, error) {
	if _, err := url.ParseRequestURI(endpoint); err != nil {
		return nil, fmt.Errorf("faceapi: endpoint[%s]: %w", endpoint, err)
	}
	switch mode {
	case "":
		mode = Detect
	case Detect, Recognize:
	default:
		return nil, fmt.Errorf("faceapi: unknown mode[%s]", mode)
	}

	return &Client{
		endpoint: strings.TrimRight(endpoint, "/"),
		apiKey:   apiKey,
		mode:     mode,
		http:     &http.Client{},
	}, nil
}

func (c *Client) requestURL() string {
	if c.mode == Recognize {
		return c.endpoint + recognizePath
	}

	params := url.Values{}
	params.Add("returnFaceId", "true")
	params.Add("returnFaceLandmarks", "false")
	params.Add("returnFaceAttributes", "emotion")
	return c.endpoint + detectPath + "?" + params.Encode()
}

// Faces posts image and returns every face found, possibly none.
func (c *Client) Faces(ctx context.Context, image []byte) ([]Face, error) {
	ctx, cancel := context.WithTimeout(ctx, apiTimeout*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.requestURL(), bytes.NewReader(image))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	req.Header.Set("Ocp-Apim-Subscription-Key", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("faceapi: %s: %w", c.mode, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("faceapi: read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		se := StatusError{StatusCode: resp.StatusCode, Body: string(body)}
		var eb errorBody
		if json.Unmarshal(body, &eb) == nil {
			se.Detail = eb.Error
		}
		return nil, &se
	}

	var faces []Face
	if err := json.Unmarshal(body, &faces); err != nil {
		return nil, fmt.Errorf("faceapi: decode: %w", err)
	}
	return faces, nil
}

// FirstFace returns the first face in image, or ErrNoFace.
func (c *Client) FirstFace(ctx context.Context, image []byte) (Face, error) {
	faces, err := c.Faces(ctx, image)
	if err != nil {
		return Face{}, err
	}
	if len(faces) == 0 {
		return Face{}, ErrNoFace
	}
	return faces[0], nil
}
