package envelope

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"
)

// Envelope frames one payload, an OrderCommand or a MatchingEvent, for
// transport across a queue. Channel names the logical edge the message
// travels (e.g. "risk.pre.3", "match.BTCUSDT"); TraceID is a per-message
// correlation id used only for log tracing, never for order, participant
// or symbol identity.
type Envelope struct {
	Channel string
	TraceID uuid.UUID
	Payload any
}

// NewEnvelope builds an envelope for payload, stamping a fresh trace id.
func NewEnvelope(channel string, payload any) Envelope {
	return Envelope{Channel: channel, TraceID: uuid.New(), Payload: payload}
}

// payloadKind discriminates the msgpack-encoded payload body, since
// msgpack has no native notion of the OrderCommand/MatchingEvent sealed
// interfaces, encoding must carry an explicit tag alongside the
// concrete struct's bytes.
type payloadKind uint8

const (
	kindTrade payloadKind = iota
	kindCancel
	kindFill
	kindCanceled
)

var ErrUnknownPayload = errors.New("envelope: unknown payload type")

// wireForm is the on-the-wire shape of an Envelope: the payload is
// pre-encoded into its own msgpack body so the outer struct stays a
// plain, self-describing record.
type wireForm struct {
	Channel string
	TraceID uuid.UUID
	Kind    payloadKind
	Body    []byte
}

// Encode produces the compact binary form of e for the hot path.
func Encode(e Envelope) ([]byte, error) {
	kind, body, err := encodePayload(e.Payload)
	if err != nil {
		return nil, err
	}
	return msgpack.Marshal(wireForm{
		Channel: e.Channel,
		TraceID: e.TraceID,
		Kind:    kind,
		Body:    body,
	})
}

// Decode parses the compact binary form produced by Encode.
func Decode(data []byte) (Envelope, error) {
	var wire wireForm
	if err := msgpack.Unmarshal(data, &wire); err != nil {
		return Envelope{}, err
	}
	payload, err := decodePayload(wire.Kind, wire.Body)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{Channel: wire.Channel, TraceID: wire.TraceID, Payload: payload}, nil
}

func encodePayload(payload any) (payloadKind, []byte, error) {
	switch p := payload.(type) {
	case TradeCommand:
		body, err := msgpack.Marshal(p)
		return kindTrade, body, err
	case CancelCommand:
		body, err := msgpack.Marshal(p)
		return kindCancel, body, err
	case Fill:
		body, err := msgpack.Marshal(p)
		return kindFill, body, err
	case Canceled:
		body, err := msgpack.Marshal(p)
		return kindCanceled, body, err
	default:
		return 0, nil, fmt.Errorf("%w: %T", ErrUnknownPayload, payload)
	}
}

func decodePayload(kind payloadKind, body []byte) (any, error) {
	switch kind {
	case kindTrade:
		var p TradeCommand
		err := msgpack.Unmarshal(body, &p)
		return p, err
	case kindCancel:
		var p CancelCommand
		err := msgpack.Unmarshal(body, &p)
		return p, err
	case kindFill:
		var p Fill
		err := msgpack.Unmarshal(body, &p)
		return p, err
	case kindCanceled:
		var p Canceled
		err := msgpack.Unmarshal(body, &p)
		return p, err
	default:
		return nil, fmt.Errorf("%w: kind %d", ErrUnknownPayload, kind)
	}
}
