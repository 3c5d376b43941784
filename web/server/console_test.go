package server

import (
	"log/slog"
	"testing"
	"time"
)

func receive(t *testing.T, messageChan <-chan ConsoleMessage) ConsoleMessage {
	t.Helper()
	select {
	case msg := <-messageChan:
		return msg
	case <-time.After(100 * time.Millisecond):
		t.Fatal("Timeout waiting for console message")
		return ConsoleMessage{}
	}
}

func TestConsoleHandler_BasicLogging(t *testing.T) {
	messageChan := make(chan ConsoleMessage, 10)
	logger := slog.New(NewConsoleHandler(messageChan, slog.LevelInfo))

	logger.Info("render started", "width", 400, "mode", "path")

	msg := receive(t, messageChan)
	if expected := "render started width=400 mode=path"; msg.Message != expected {
		t.Errorf("Expected message '%s', got '%s'", expected, msg.Message)
	}
	if msg.Level != "info" {
		t.Errorf("Expected level 'info', got '%s'", msg.Level)
	}
	if time.Since(msg.Timestamp) > time.Second {
		t.Errorf("Timestamp seems too old: %v", msg.Timestamp)
	}
}

func TestConsoleHandler_LevelFilter(t *testing.T) {
	messageChan := make(chan ConsoleMessage, 10)
	logger := slog.New(NewConsoleHandler(messageChan, slog.LevelInfo))

	logger.Debug("tile done", "tile", 3)
	logger.Warn("render aborted")

	msg := receive(t, messageChan)
	if msg.Message != "render aborted" || msg.Level != "warn" {
		t.Errorf("Expected only the warning to pass the filter, got %+v", msg)
	}
	select {
	case extra := <-messageChan:
		t.Errorf("Unexpected extra message %+v", extra)
	default:
	}
}

func TestConsoleHandler_AttrsAndGroups(t *testing.T) {
	messageChan := make(chan ConsoleMessage, 10)
	logger := slog.New(NewConsoleHandler(messageChan, nil)).With("render", "abc").WithGroup("tile")

	logger.Info("done", "id", 7, slog.Group("bounds", "rows", 2))

	msg := receive(t, messageChan)
	if expected := "done render=abc tile.id=7 tile.bounds.rows=2"; msg.Message != expected {
		t.Errorf("Expected message '%s', got '%s'", expected, msg.Message)
	}
}

func TestConsoleHandler_ChannelFull(t *testing.T) {
	messageChan := make(chan ConsoleMessage, 1)
	logger := slog.New(NewConsoleHandler(messageChan, slog.LevelInfo))

	// Later messages are dropped; the logger must not block
	logger.Info("Message 1")
	logger.Info("Message 2")
	logger.Info("Message 3")

	if msg := receive(t, messageChan); msg.Message != "Message 1" {
		t.Errorf("Expected first message to be kept, got '%s'", msg.Message)
	}
}

func TestConsoleHandler_NilChannel(t *testing.T) {
	logger := slog.New(NewConsoleHandler(nil, slog.LevelInfo))

	// This should not block or panic
	logger.Info("Test message with nil channel")
}
