package downloader

import (
	"bytes"
	"io"
	"log"
	"os"
	"os/exec"
	"strings"
	"sync"

	"github.com/abdelghafour1223/tiktok-downloder/internal/models"

	stderrors "errors"

	"github.com/pkg/errors"
)

// streamChunkSize bounds a single Read from the yt-dlp pipe.
const streamChunkSize = 8 * 1024

// ProcessStream wraps a running yt-dlp subprocess and exposes its stdout as
// an io.ReadCloser. Exactly one consumer drains it; Close must be called on
// every exit path. If the consumer stops reading before end-of-stream, Close
// kills the subprocess so client disconnects never leak OS processes.
type ProcessStream struct {
	op     string
	cmd    *exec.Cmd
	stdout *os.File
	stderr *bytes.Buffer

	waitCh  chan error
	waitErr error
	exited  bool

	killOnce  sync.Once
	closeOnce sync.Once
}

// newProcessStream starts cmd with its stdout wired to an os.Pipe. The pipe
// (instead of cmd.StdoutPipe) lets the monitor goroutine call Wait while the
// consumer is still reading; the parent closes its write end after Start so
// the reader sees EOF once the child exits.
func newProcessStream(op string, cmd *exec.Cmd) (*ProcessStream, error) {
	pr, pw, err := os.Pipe()
	if err != nil {
		return nil, errors.Wrap(err, "creating stdout pipe")
	}

	stderr := &bytes.Buffer{}
	cmd.Stdout = pw
	cmd.Stderr = stderr

	if err := cmd.Start(); err != nil {
		pr.Close()
		pw.Close()
		return nil, errors.Wrapf(err, "spawning yt-dlp for %s", op)
	}
	pw.Close()

	s := &ProcessStream{
		op:     op,
		cmd:    cmd,
		stdout: pr,
		stderr: stderr,
		waitCh: make(chan error, 1),
	}

	go func() {
		s.waitCh <- cmd.Wait()
	}()

	return s, nil
}

// Read returns at most one chunk of the subprocess output. A failed exit
// takes priority over buffered bytes so a truncated download is never
// mistaken for a successful one.
func (s *ProcessStream) Read(p []byte) (int, error) {
	s.pollExit()
	if s.exited && s.waitErr != nil {
		s.kill()
		return 0, s.processError()
	}

	if len(p) > streamChunkSize {
		p = p[:streamChunkSize]
	}

	n, err := s.stdout.Read(p)
	if err == io.EOF {
		// Writer side is closed, so the process is done; reap it and
		// surface a non-zero exit instead of a silent clean EOF.
		if !s.exited {
			s.waitErr = <-s.waitCh
			s.exited = true
		}
		if s.waitErr != nil {
			return n, s.processError()
		}
		return n, io.EOF
	}
	if err != nil {
		s.kill()
		return n, errors.Wrapf(err, "reading yt-dlp output for %s", s.op)
	}
	return n, nil
}

// Close tears the stream down. Safe to call from any exit path, including
// after a natural EOF; the kill is issued at most once.
func (s *ProcessStream) Close() error {
	s.closeOnce.Do(func() {
		s.kill()
		s.stdout.Close()
	})
	return nil
}

func (s *ProcessStream) pollExit() {
	if s.exited {
		return
	}
	select {
	case err := <-s.waitCh:
		s.waitErr = err
		s.exited = true
	default:
	}
}

func (s *ProcessStream) kill() {
	s.killOnce.Do(func() {
		err := s.cmd.Process.Kill()
		if err != nil && !stderrors.Is(err, os.ErrProcessDone) {
			log.Printf("⚠️ Could not kill yt-dlp process (%s): %v", s.op, err)
		}
	})
}

func (s *ProcessStream) processError() error {
	return &models.ProcessError{
		Op:     s.op,
		Stderr: strings.TrimSpace(s.stderr.String()),
		Err:    s.waitErr,
	}
}
