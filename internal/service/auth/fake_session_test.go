package auth

import (
	"context"
	"net/http"
	"sync"
	"time"
)

// fakeSession is a scripted Session.
type fakeSession struct {
	mu sync.Mutex

	navigateErr error
	fillErr     error
	clickErr    error
	panicOnFill bool

	exchanges   map[string]*Exchange
	exchangeErr map[string]error

	// onNavigate runs inside Navigate, e.g. to advance a fake clock.
	onNavigate func()

	navigated   []string
	fills       map[string]string
	clicked     string
	clickSettle time.Duration
	waited      []string
	closeCount  int
}

func newFakeSession() *fakeSession {
	return &fakeSession{
		exchanges:   make(map[string]*Exchange),
		exchangeErr: make(map[string]error),
		fills:       make(map[string]string),
	}
}

func (s *fakeSession) Navigate(_ context.Context, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.navigated = append(s.navigated, url)

	if s.onNavigate != nil {
		s.onNavigate()
	}

	return s.navigateErr
}

func (s *fakeSession) Fill(_ context.Context, selector, value string) error {
	if s.panicOnFill {
		panic("page crashed")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.fillErr != nil {
		return s.fillErr
	}

	s.fills[selector] = value

	return nil
}

func (s *fakeSession) Click(_ context.Context, selector string, settle time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.clicked = selector
	s.clickSettle = settle

	return s.clickErr
}

// WaitForMatchingExchange returns the scripted exchange, or blocks until ctx ends when there is none.
func (s *fakeSession) WaitForMatchingExchange(ctx context.Context, pathPattern string) (*Exchange, error) {
	s.mu.Lock()
	s.waited = append(s.waited, pathPattern)
	exchange, hasExchange := s.exchanges[pathPattern]
	err := s.exchangeErr[pathPattern]
	s.mu.Unlock()

	if err != nil {
		return nil, err
	}

	if !hasExchange {
		<-ctx.Done()

		return nil, ctx.Err()
	}

	return exchange, nil
}

func (s *fakeSession) Close(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closeCount++

	return nil
}

func (s *fakeSession) respond(path string, header http.Header, body []byte) {
	s.exchanges[path] = &Exchange{
		URL:        "https://login.xolta.com/tenant/" + path + "?p=x",
		StatusCode: http.StatusOK,
		Header:     header,
		Body:       body,
	}
}

// fakeFactory opens the scripted session.
type fakeFactory struct {
	session *fakeSession
	err     error
	opts    SessionOptions
	opened  int
}

func (f *fakeFactory) Open(_ context.Context, opts SessionOptions) (Session, error) {
	f.opts = opts
	f.opened++

	if f.err != nil {
		return nil, f.err
	}

	return f.session, nil
}
