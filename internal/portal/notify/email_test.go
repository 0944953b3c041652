package notify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCodeEmail(t *testing.T) {
	body := CodeEmail("Alice Example", "FAST-0042", 10*time.Minute)
	require.Contains(t, body, "Alice Example")
	require.Contains(t, body, "FAST-0042")
	require.Contains(t, body, "10 minutes")
}

func TestCodeEmailEscapesName(t *testing.T) {
	body := CodeEmail(`<script>alert("x")</script>`, "FAST-0042", 10*time.Minute)
	require.NotContains(t, body, "<script>")
}
