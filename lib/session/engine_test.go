package session

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-smsc/emi-smsc/lib/protocol"
	"github.com/go-smsc/emi-smsc/lib/util"
)

func TestParseMTBehavior(t *testing.T) {
	tests := []struct {
		in      string
		want    MTBehavior
		wantErr bool
	}{
		{"ack", BehaviorAck, false},
		{" NACK ", BehaviorNack, false},
		{"NoReply", BehaviorNoReply, false},
		{"drop", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMTBehavior(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseMTBehavior(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseMTBehavior(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		want   error
	}{
		{"defaults", func(*Config) {}, nil},
		{"behavior", func(c *Config) { c.MTBehavior = "drop" }, ErrInvalidBehavior},
		{"nack code", func(c *Config) { c.NackCode = 100 }, ErrInvalidNackCode},
		{"delay", func(c *Config) { c.StatusReport.Delay = -time.Second }, ErrInvalidDelay},
		{"dst", func(c *Config) { c.StatusReport.Dst = 3 }, protocol.ErrInvalidDst},
		{"rsn", func(c *Config) { c.StatusReport.Rsn = "1" }, protocol.ErrInvalidRsn},
		{"buffer", func(c *Config) { c.BufferSize = 0 }, ErrInvalidBufferSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)
			err := cfg.Validate()
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestNewEngine_InvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BufferSize = -1
	_, err := NewEngine(cfg)
	assert.Error(t, err)
}

func TestEngine_NextTRN(t *testing.T) {
	e := newTestEngine(t)
	for i := 0; i < protocol.MaxTRN; i++ {
		require.Equal(t, i, e.NextTRN())
	}
	assert.Equal(t, 0, e.NextTRN())
	assert.Equal(t, 1, e.NextTRN())
}

func TestEngine_SCTS(t *testing.T) {
	e := newTestEngine(t)
	assert.Equal(t, "170326103000", e.SCTS("0611", "1234"))
	assert.Equal(t, "170326103001", e.SCTS("0611", "1234"))
	assert.Equal(t, "170326103000", e.SCTS("0611", "5678"))
}

func TestEngine_Authenticate(t *testing.T) {
	e := newTestEngine(t, WithAuthenticator(AuthenticatorFunc(func(account, _ string) error {
		if account != "acme" {
			return errors.New("unknown account")
		}
		return nil
	})))

	assert.NoError(t, e.authenticate("acme", "x"))
	err := e.authenticate("other", "x")
	assert.True(t, errors.Is(err, util.ErrAuthFailed))
	assert.Equal(t, "07", util.ToNackCode(err))
}

func TestReportQueue(t *testing.T) {
	q := newReportQueue()
	base := testNow

	q.Push(base.Add(2*time.Second), protocol.SRRequest{AdC: "c"})
	q.Push(base.Add(time.Second), protocol.SRRequest{AdC: "a"})
	q.Push(base.Add(time.Second), protocol.SRRequest{AdC: "b"})

	due, ok := q.NextDue()
	require.True(t, ok)
	assert.Equal(t, base.Add(time.Second), due)

	assert.Empty(t, q.PopDue(base))

	got := q.PopDue(base.Add(time.Second))
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].AdC)
	assert.Equal(t, "b", got[1].AdC)
	assert.Equal(t, 1, q.Len())

	got = q.PopDue(base.Add(time.Hour))
	require.Len(t, got, 1)
	_, ok = q.NextDue()
	assert.False(t, ok)
}
