package logs

import (
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/Alijeyrad/formsbot/pkg/constants"
)

// SendFunc posts one message to the log channel.
type SendFunc func(content string) error

// discordWriter implements io.Writer that forwards each log line to a Discord
// channel once a sender is attached. Lines written before that are dropped.
type discordWriter struct {
	send  atomic.Pointer[SendFunc]
	lines chan string
	once  sync.Once
}

var channelWriter = &discordWriter{lines: make(chan string, 64)}

// AttachDiscord starts forwarding log-channel records through send. Only the
// first call starts the forwarder; later calls swap the sender.
func AttachDiscord(send SendFunc) {
	channelWriter.send.Store(&send)
	channelWriter.once.Do(func() { go channelWriter.run() })
}

func newDiscordHandler(level slog.Level) slog.Handler {
	return slog.NewTextHandler(channelWriter, &slog.HandlerOptions{Level: level})
}

func (dw *discordWriter) Write(p []byte) (int, error) {
	if dw.send.Load() == nil {
		return len(p), nil
	}
	line := strings.TrimRight(string(p), "\n")
	if strings.Contains(line, "rate limited") {
		return len(p), nil
	}
	select {
	case dw.lines <- line:
	default:
		// forwarder is behind, drop the line
	}
	return len(p), nil
}

func (dw *discordWriter) run() {
	for line := range dw.lines {
		send := dw.send.Load()
		if send == nil {
			continue
		}
		// errors are not logged here, that would feed back into this writer
		_ = (*send)(CodeBlock(line))
	}
}

// CodeBlock wraps s in a code block, truncated to fit a Discord message.
func CodeBlock(s string) string {
	r := []rune(s)
	if len(r) > constants.MaxLogMessageLength {
		r = r[:constants.MaxLogMessageLength]
	}
	return "```" + string(r) + "```"
}
