package pkg

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumericCode(t *testing.T) {
	for i := 0; i < 50; i++ {
		code, err := NumericCode(6)
		require.NoError(t, err)
		assert.Regexp(t, `^[0-9]{6}$`, code)
	}

	_, err := NumericCode(0)
	assert.Error(t, err)
	_, err = NumericCode(19)
	assert.Error(t, err)
}

func TestEmailCodeHTML(t *testing.T) {
	body := EmailCodeHTML("reset your password", "123456", 5*time.Minute)
	assert.Contains(t, body, "123456")
	assert.Contains(t, body, "5 minutes")
}

func TestEventMessage(t *testing.T) {
	msg := EventMessage("follow", 42, []byte(`{"author_id":7}`))
	assert.Equal(t, "42", string(msg.Key))
	assert.JSONEq(t, `{"author_id":7}`, string(msg.Value))
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, EventHeader, msg.Headers[0].Key)
	assert.Equal(t, "follow", string(msg.Headers[0].Value))
}
