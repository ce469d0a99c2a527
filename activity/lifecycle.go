package activity

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
)

// Response is what the request cycle knows on completion.
type Response struct {
	// Redirect is set when the server answered with a page replacement.
	Redirect string
}

func (r Response) IsRedirect() bool {
	return r.Redirect != ""
}

// Lifecycle maps request signals onto an Indicator.
type Lifecycle struct {
	ind Indicator
}

func NewLifecycle(ind Indicator) *Lifecycle {
	return &Lifecycle{ind: ind}
}

func (l *Lifecycle) Begin() {
	l.ind.SetErrorState(false)
	l.ind.Start()
}

func (l *Lifecycle) Error() {
	l.ind.SetErrorState(true)
}

func (l *Lifecycle) Success() {
	l.ind.SetErrorState(false)
}

// Complete stops the indicator unless the page is about to be replaced, in
// which case it keeps running until the new page loads.
func (l *Lifecycle) Complete(resp Response) {
	if resp.IsRedirect() {
		return
	}
	l.ind.Stop()
}

var ErrNotPartialResponse = errors.New("not a partial-response document")

// ParsePartialResponse reads a JSF partial-response and extracts its redirect
// target, if any.
func ParsePartialResponse(data []byte) (Response, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	var (
		resp Response
		root bool
	)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Response{}, fmt.Errorf("partial-response: %w", err)
		}
		se, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		switch se.Name.Local {
		case "partial-response":
			root = true
		case "redirect":
			for _, a := range se.Attr {
				if a.Name.Local == "url" {
					resp.Redirect = a.Value
				}
			}
			if resp.Redirect == "" {
				resp.Redirect = "/"
			}
		}
	}
	if !root {
		return Response{}, ErrNotPartialResponse
	}
	return resp, nil
}
