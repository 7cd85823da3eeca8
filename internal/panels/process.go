package panels

import (
	"fmt"
	"os"
	"os/exec"
	"sync/atomic"
)

// Process is a running panel or helper program.
type Process interface {
	Exited() bool
	Stop() error
}

// Launcher starts programs. It is swapped out in tests.
type Launcher interface {
	Launch(argv []string) (Process, error)
}

// ExecLauncher launches programs with os/exec.
type ExecLauncher struct{}

// Launch starts argv and reaps it in the background.
func (ExecLauncher) Launch(argv []string) (Process, error) {
	if len(argv) == 0 {
		return nil, fmt.Errorf("empty command")
	}

	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to launch %q: %w", argv[0], err)
	}

	p := &execProcess{cmd: cmd}
	go func() {
		_ = cmd.Wait()
		p.exited.Store(true)
	}()
	return p, nil
}

type execProcess struct {
	cmd    *exec.Cmd
	exited atomic.Bool
}

func (p *execProcess) Exited() bool { return p.exited.Load() }

func (p *execProcess) Stop() error {
	if p.Exited() {
		return nil
	}
	if err := p.cmd.Process.Kill(); err != nil && !p.Exited() {
		return err
	}
	return nil
}
