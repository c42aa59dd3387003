package gateway

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"trade_exchange/pkg/logx"
)

var ErrNoSessions = errors.New("no bot sessions")

// ConnectionListener получает переходы состояния сессии бота.
type ConnectionListener interface {
	OnDisconnected(botName string)
	OnConnected(ctx context.Context, botName string)
}

type sessionState struct {
	session       *BotSession
	connected     bool
	everConnected bool
}

// Pool следит за сессиями ботов в шлюзе и сообщает о разрывах и
// переподключениях.
type Pool struct {
	sessions     []*sessionState
	pollInterval time.Duration

	pollMu sync.Mutex

	mu        sync.Mutex
	listeners []ConnectionListener

	readyCount atomic.Int32
	ready      chan struct{}
	readyOnce  sync.Once
}

func NewPool(client *Client, botNames []string, pollInterval time.Duration) (*Pool, error) {
	if len(botNames) == 0 {
		return nil, ErrNoSessions
	}

	pool := &Pool{
		sessions:     make([]*sessionState, 0, len(botNames)),
		pollInterval: pollInterval,
		ready:        make(chan struct{}),
	}

	for _, name := range botNames {
		pool.sessions = append(pool.sessions, &sessionState{session: client.Bot(name)})
	}

	return pool, nil
}

func (p *Pool) Subscribe(listener ConnectionListener) {
	p.mu.Lock()
	p.listeners = append(p.listeners, listener)
	p.mu.Unlock()
}

func (p *Pool) Session(botName string) (*BotSession, bool) {
	for _, s := range p.sessions {
		if s.session.name == botName {
			return s.session, true
		}
	}

	return nil, false
}

func (p *Pool) Size() int {
	return len(p.sessions)
}

// Start опрашивает статус сессий до отмены контекста.
func (p *Pool) Start(ctx context.Context) error {
	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		p.Poll(ctx)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Poll делает один опрос всех сессий.
func (p *Pool) Poll(ctx context.Context) {
	p.pollMu.Lock()
	defer p.pollMu.Unlock()

	var wg sync.WaitGroup

	for _, s := range p.sessions {
		wg.Add(1)

		go func() {
			defer wg.Done()
			p.pollOne(ctx, s)
		}()
	}

	wg.Wait()
}

func (p *Pool) pollOne(ctx context.Context, s *sessionState) {
	connected, err := s.session.IsConnected(ctx)
	if err != nil {
		// шлюз недоступен: считаем сессию разорванной
		logger(ctx).Debug("session status unknown", slog.String(logx.FieldBot, s.session.name), logx.Error(err))

		connected = false
	}

	wasConnected := s.connected
	s.connected = connected

	switch {
	case connected && !wasConnected:
		if !s.everConnected {
			s.everConnected = true
			p.markReady()
		}

		logger(ctx).Info("bot session connected", slog.String(logx.FieldBot, s.session.name))

		for _, l := range p.snapshotListeners() {
			l.OnConnected(ctx, s.session.name)
		}
	case !connected && wasConnected:
		logger(ctx).Warn("bot session disconnected", slog.String(logx.FieldBot, s.session.name))

		for _, l := range p.snapshotListeners() {
			l.OnDisconnected(s.session.name)
		}
	}
}

func (p *Pool) markReady() {
	if int(p.readyCount.Add(1)) >= len(p.sessions) {
		p.readyOnce.Do(func() { close(p.ready) })
	}
}

func (p *Pool) snapshotListeners() []ConnectionListener {
	p.mu.Lock()
	defer p.mu.Unlock()

	return append([]ConnectionListener(nil), p.listeners...)
}

// IsReady сообщает, была ли каждая сессия хотя бы раз подключена.
func (p *Pool) IsReady() bool {
	select {
	case <-p.ready:
		return true
	default:
		return false
	}
}

// WaitReady ждёт, пока каждая сессия хотя бы раз окажется подключённой.
func (p *Pool) WaitReady(ctx context.Context) error {
	select {
	case <-p.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
