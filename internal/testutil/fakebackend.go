// Package testutil provides in-memory fakes for tests.
package testutil

import (
	"context"
	"sync"
)

// CallLog records which fake backends were called, in order.
type CallLog struct {
	mu           sync.Mutex
	names        []string
	instructions []string
}

func (l *CallLog) add(name, instruction string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.names = append(l.names, name)
	l.instructions = append(l.instructions, instruction)
}

// Names returns the backend names in call order.
func (l *CallLog) Names() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.names...)
}

// Instructions returns what each call was asked, in call order.
func (l *CallLog) Instructions() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.instructions...)
}

// FakeBackend is a scripted llm.Backend.
type FakeBackend struct {
	ID   string
	Text string
	Err  error
	Log  *CallLog
}

func (f *FakeBackend) Name() string { return f.ID }

func (f *FakeBackend) Generate(ctx context.Context, instruction string) (string, error) {
	if f.Log != nil {
		f.Log.add(f.ID, instruction)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if f.Err != nil {
		return "", f.Err
	}
	return f.Text, nil
}
