package kafka

import (
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/turtacn/fragvocab/pkg/errors"
	ftypes "github.com/turtacn/fragvocab/pkg/types/fragment"
)

// TopicFragments is the default topic for fragment events.
const TopicFragments = "fragvocab.fragments"

const (
	HeaderEventID = "event-id"
	HeaderRunID   = "run-id"
	HeaderVariant = "variant"
)

// NewFragmentMessage encodes evt as a JSON message keyed by its SMILES, so
// every occurrence of a fragment lands on the same partition.
func NewFragmentMessage(topic string, evt ftypes.FragmentEvent) (kafka.Message, error) {
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now().UTC()
	}
	value, err := json.Marshal(evt)
	if err != nil {
		return kafka.Message{}, errors.Wrap(err, errors.ErrCodeSerialization, "encode fragment event")
	}
	return kafka.Message{
		Topic: topic,
		Key:   []byte(evt.SMILES),
		Value: value,
		Time:  evt.Timestamp,
		Headers: []kafka.Header{
			{Key: HeaderEventID, Value: []byte(uuid.NewString())},
			{Key: HeaderRunID, Value: []byte(evt.RunID)},
			{Key: HeaderVariant, Value: []byte(evt.Variant)},
		},
	}, nil
}

// DecodeFragmentMessage is the inverse of NewFragmentMessage.
func DecodeFragmentMessage(msg kafka.Message) (ftypes.FragmentEvent, error) {
	var evt ftypes.FragmentEvent
	if err := json.Unmarshal(msg.Value, &evt); err != nil {
		return evt, errors.Wrap(err, errors.ErrCodeSerialization, "decode fragment event")
	}
	return evt, nil
}

// Header returns the value of a message header, or "" when absent.
func Header(msg kafka.Message, key string) string {
	for _, h := range msg.Headers {
		if strings.EqualFold(h.Key, key) {
			return string(h.Value)
		}
	}
	return ""
}
