package feed

import (
	"errors"

	"github.com/soulink/soulink/internal/utils"
	"github.com/tidwall/gjson"
)

// ErrMalformed is returned when a posts response cannot be parsed at all.
var ErrMalformed = errors.New("malformed posts response")

// Envelope identifies how a posts collection was wrapped.
type Envelope int

const (
	EnvelopeNone Envelope = iota
	EnvelopeArray
	EnvelopeResults
	EnvelopeData
	EnvelopePosts
)

// keyedEnvelopes are tried in order when the body is an object.
var keyedEnvelopes = []struct {
	key      string
	envelope Envelope
}{
	{"results", EnvelopeResults},
	{"data", EnvelopeData},
	{"posts", EnvelopePosts},
}

func (e Envelope) String() string {
	switch e {
	case EnvelopeArray:
		return "array"
	case EnvelopeResults:
		return "results"
	case EnvelopeData:
		return "data"
	case EnvelopePosts:
		return "posts"
	}
	return "none"
}

// Resolve unwraps a posts collection: a bare array, or an array under
// results, data or posts. Any other valid JSON resolves to no records.
func Resolve(body []byte) (Envelope, []gjson.Result, error) {
	if !gjson.ValidBytes(body) {
		return EnvelopeNone, nil, ErrMalformed
	}
	doc := gjson.ParseBytes(body)
	if doc.IsArray() {
		return EnvelopeArray, doc.Array(), nil
	}
	if doc.IsObject() {
		for _, k := range keyedEnvelopes {
			if v := doc.Get(k.key); v.IsArray() {
				return k.envelope, v.Array(), nil
			}
		}
	}
	return EnvelopeNone, []gjson.Result{}, nil
}

// Records is Resolve without the envelope kind.
func Records(body []byte) ([]gjson.Result, error) {
	envelope, recs, err := Resolve(body)
	if err == nil {
		utils.Log.WithField("envelope", envelope).Debug("Resolved posts envelope")
	}
	return recs, err
}
