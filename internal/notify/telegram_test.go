package notify

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTelegram_MethodURL(t *testing.T) {
	tg := NewTelegram("123:ABC", "chat1", nil)
	assert.Equal(t, "https://api.telegram.org/bot123:ABC/sendMessage", tg.methodURL("sendMessage"))
}

func TestTelegram_SendFailsWithoutBotToken(t *testing.T) {
	tg := NewTelegram("", "chat1", nil)
	err := tg.send(context.Background(), "hello")
	assert.Error(t, err)
}
