package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSON_DoesNotEscapeHTML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, JSON(&buf, map[string]string{
		"pact":  "our_consumer -> our_provider",
		"state": "animals count is > 0",
	}))

	assert.Equal(t, `{
  "pact": "our_consumer -> our_provider",
  "state": "animals count is > 0"
}
`, buf.String())
}

func TestTable(t *testing.T) {
	var buf bytes.Buffer
	tw := Table(&buf)
	_, _ = tw.Write([]byte("STATE\tSTATUS\nx\tok\n"))
	require.NoError(t, tw.Flush())

	assert.Equal(t, "STATE  STATUS\nx      ok\n", buf.String())
}
