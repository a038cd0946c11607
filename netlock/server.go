package netlock

import (
	"bufio"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"net"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Server hosts named mutexes over TCP. One process in the deployment runs
// it; every claimer connects as a Client.
type Server struct {
	authKey []byte
	logger  zerolog.Logger

	ln net.Listener
	wg sync.WaitGroup

	mu    sync.Mutex
	locks map[string]chan struct{}
	conns map[net.Conn]struct{}
}

// NewServer creates a lock server using the given shared authkey.
func NewServer(authKey string, logger zerolog.Logger) *Server {
	return &Server{
		authKey: []byte(authKey),
		logger:  logger,
		locks:   make(map[string]chan struct{}),
		conns:   make(map[net.Conn]struct{}),
	}
}

// Open starts listening on addr, e.g. ":4643".
func (s *Server) Open(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.ln = ln
	s.wg.Add(1)
	go s.serve()
	s.logger.Info().Str("addr", ln.Addr().String()).Msg("lock server listening")
	return nil
}

// Addr returns the address the server is listening on.
func (s *Server) Addr() string {
	if s.ln == nil {
		return ""
	}
	return s.ln.Addr().String()
}

// Close stops the listener and drops every connection, releasing all locks.
func (s *Server) Close() error {
	var err error
	if s.ln != nil {
		err = s.ln.Close()
	}
	s.mu.Lock()
	for conn := range s.conns {
		conn.Close()
	}
	s.mu.Unlock()
	s.wg.Wait()
	return err
}

func (s *Server) serve() {
	defer s.wg.Done()
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			return
		}
		s.mu.Lock()
		s.conns[conn] = struct{}{}
		s.mu.Unlock()
		s.wg.Add(1)
		go s.handle(conn)
	}
}

// lock returns the channel backing a named mutex, creating it on first
// use. Sending into the channel acquires, receiving releases.
func (s *Server) lock(name string) chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch, ok := s.locks[name]
	if !ok {
		ch = make(chan struct{}, 1)
		s.locks[name] = ch
	}
	return ch
}

func (s *Server) handle(conn net.Conn) {
	defer s.wg.Done()
	defer func() {
		conn.Close()
		s.mu.Lock()
		delete(s.conns, conn)
		s.mu.Unlock()
	}()

	session := uuid.NewString()
	logger := s.logger.With().Str("session", session).Logger()

	reader, err := s.authenticate(conn)
	if err != nil {
		logger.Warn().Err(err).Msg("lock client rejected")
		return
	}

	// The reader goroutine stays blocked on the connection, so a drop is
	// noticed even while this goroutine waits for a lock grant. The buffer
	// keeps it reading past pipelined commands instead of blocking on the
	// send.
	cmds := make(chan string, 16)
	dropped := make(chan struct{})
	go func() {
		scanner := bufio.NewScanner(reader)
		for scanner.Scan() {
			cmds <- scanner.Text()
		}
		close(dropped)
	}()

	held := make(map[string]bool)
	defer func() {
		for name := range held {
			<-s.lock(name)
			logger.Debug().Str("lock", name).Msg("released on disconnect")
		}
	}()

	for {
		var line string
		select {
		case line = <-cmds:
		case <-dropped:
			return
		}

		verb, name, _ := strings.Cut(strings.TrimSpace(line), " ")
		switch verb {
		case cmdAcquire:
			if name == "" || held[name] {
				fmt.Fprintf(conn, "%s bad acquire\n", replyErr)
				continue
			}
			select {
			case s.lock(name) <- struct{}{}:
				held[name] = true
				fmt.Fprintf(conn, "%s %s\n", replyGranted, session)
			case <-dropped:
				return
			}
		case cmdRelease:
			if !held[name] {
				fmt.Fprintf(conn, "%s not held\n", replyErr)
				continue
			}
			<-s.lock(name)
			delete(held, name)
			fmt.Fprintf(conn, "%s\n", replyReleased)
		default:
			fmt.Fprintf(conn, "%s unknown command\n", replyErr)
		}
	}
}

// authenticate runs the challenge handshake on a fresh connection. The
// returned reader carries any bytes already buffered past the handshake.
func (s *Server) authenticate(conn net.Conn) (*bufio.Reader, error) {
	challenge := make([]byte, 32)
	if _, err := rand.Read(challenge); err != nil {
		return nil, err
	}
	if _, err := fmt.Fprintf(conn, "%s\n", base64.StdEncoding.EncodeToString(challenge)); err != nil {
		return nil, err
	}

	reader := bufio.NewReader(conn)
	line, err := reader.ReadString('\n')
	if err != nil {
		return nil, err
	}
	got, err := hex.DecodeString(strings.TrimSpace(line))
	if err != nil {
		return nil, fmt.Errorf("malformed challenge response: %w", err)
	}

	mac := hmac.New(sha256.New, s.authKey)
	mac.Write(challenge)
	if !hmac.Equal(got, mac.Sum(nil)) {
		fmt.Fprintf(conn, "%s unauthorized\n", replyErr)
		return nil, fmt.Errorf("authkey mismatch")
	}

	if _, err := fmt.Fprintf(conn, "%s\n", replyOK); err != nil {
		return nil, err
	}
	return reader, nil
}
