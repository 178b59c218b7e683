package notify

import (
	"testing"
	"time"
)

func TestHubRegisterPushUnregister(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	client := &Client{
		Send:   make(chan []byte, 10),
		UserID: "user1",
	}
	hub.Register(client)

	hub.Push("user1", []byte(`{"kind":"booking_confirmed"}`))

	select {
	case got := <-client.Send:
		if string(got) != `{"kind":"booking_confirmed"}` {
			t.Fatalf("unexpected payload %s", got)
		}
	case <-time.After(1 * time.Second):
		t.Fatal("timeout waiting for push")
	}

	hub.Unregister(client)
}

func TestHubPushToUnknownUserDoesNotBlock(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	done := make(chan struct{})
	go func() {
		hub.Push("nobody", []byte("x"))
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(1 * time.Second):
		t.Fatal("push to unknown user blocked")
	}
}

func TestHubMultipleConnectionsSameUser(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	a := &Client{Send: make(chan []byte, 1), UserID: "user2"}
	b := &Client{Send: make(chan []byte, 1), UserID: "user2"}
	hub.Register(a)
	hub.Register(b)

	hub.Push("user2", []byte("hello"))

	for _, c := range []*Client{a, b} {
		select {
		case got := <-c.Send:
			if string(got) != "hello" {
				t.Fatalf("unexpected payload %s", got)
			}
		case <-time.After(1 * time.Second):
			t.Fatal("timeout waiting for fan-out to both connections")
		}
	}
}
