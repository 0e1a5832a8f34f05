package kafka

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewRequiresBrokersAndTopic(t *testing.T) {
	_, err := New(nil, "download-gate.audit")
	assert.ErrorContains(t, err, "brokers")

	_, err = New([]string{"localhost:9092"}, "")
	assert.ErrorContains(t, err, "topic")
}
