package messaging

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeClient struct {
	NopPublisher
	connected bool
}

func (f fakeClient) IsConnected() bool { return f.connected }

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}
	ctx := context.Background()
	assert.NoError(t, p.Publish(ctx, SubjectHeadersDecoded, []byte("x")))
	assert.NoError(t, p.PublishMsg(ctx, &Message{Subject: SubjectHeadersDecoded}))
	assert.NoError(t, p.Close())
}

func TestSourceSubject(t *testing.T) {
	assert.Equal(t, "csv.headers.decoded.firewall", SourceSubject(SubjectHeadersDecoded, "firewall"))
	assert.Equal(t, SubjectHeadersDecoded, SourceSubject(SubjectHeadersDecoded, ""))
}

func TestCheckHealth(t *testing.T) {
	tests := []struct {
		name     string
		pub      Publisher
		expected HealthStatus
	}{
		{"nil", nil, HealthStatus{}},
		{"nop", NopPublisher{}, HealthStatus{}},
		{"connected", fakeClient{connected: true}, HealthStatus{Enabled: true, Connected: true}},
		{"disconnected", fakeClient{}, HealthStatus{Enabled: true, Error: "not connected to message broker"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CheckHealth(tt.pub))
		})
	}
}
