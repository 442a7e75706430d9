package editor

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"sync"

	"github.com/neovim/go-client/nvim"
	"github.com/sirupsen/logrus"
)

// Nvim is a widget backed by an embedded headless Neovim process. Each
// instance owns one process holding one buffer.
type Nvim struct {
	mu     sync.Mutex
	client *nvim.Nvim
	root   string
	path   string
	log    logrus.FieldLogger
}

// CheckNvim verifies that a usable nvim (>= 0.9) is on PATH.
func CheckNvim() error {
	out, err := exec.Command("nvim", "--version").Output()
	if err != nil {
		return fmt.Errorf("nvim not found: %w", err)
	}

	// First line is like "NVIM v0.10.2"
	first, _, _ := strings.Cut(string(out), "\n")
	version := strings.TrimPrefix(strings.TrimSpace(first), "NVIM v")

	major, minor, err := parseSemver(version)
	if err != nil {
		return fmt.Errorf("could not parse nvim version %q: %w", version, err)
	}
	if major == 0 && minor < 9 {
		return fmt.Errorf("nvim >= 0.9 required, found %d.%d", major, minor)
	}
	return nil
}

func parseSemver(s string) (int, int, error) {
	parts := strings.SplitN(s, ".", 3)
	if len(parts) < 2 {
		return 0, 0, fmt.Errorf("invalid version: %s", s)
	}
	major, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, err
	}
	minor, err := strconv.Atoi(strings.TrimRightFunc(parts[1], func(r rune) bool {
		return r < '0' || r > '9'
	}))
	if err != nil {
		return 0, 0, err
	}
	return major, minor, nil
}

// StartNvim launches `nvim --embed --headless` rooted at root and opens path.
func StartNvim(root, path string, log logrus.FieldLogger) (*Nvim, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	log = log.WithField("component", "nvim")

	client, err := nvim.NewChildProcess(
		nvim.ChildProcessArgs("--embed", "--headless", "-n", "-i", "NONE", "--clean"),
		nvim.ChildProcessDir(root),
		nvim.ChildProcessLogf(func(format string, args ...interface{}) {
			log.Debugf(format, args...)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("start nvim: %w", err)
	}

	n := &Nvim{client: client, root: root, path: path, log: log}
	if err := n.edit(path); err != nil {
		_ = client.Close()
		return nil, err
	}
	return n, nil
}

func (n *Nvim) edit(path string) error {
	if err := n.client.ExecLua("vim.cmd('edit! ' .. vim.fn.fnameescape(...))", nil, path); err != nil {
		return fmt.Errorf("open %s in nvim: %w", path, err)
	}
	return nil
}

func (n *Nvim) Path() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.path
}

func (n *Nvim) Content() string {
	n.mu.Lock()
	defer n.mu.Unlock()

	var lines []string
	if err := n.client.ExecLua("return vim.api.nvim_buf_get_lines(0, 0, -1, false)", &lines); err != nil {
		n.log.WithError(err).Debug("read buffer")
		return ""
	}
	return strings.Join(lines, "\n")
}

func (n *Nvim) SetContent(content string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	lines := strings.Split(content, "\n")
	if err := n.client.ExecLua("vim.api.nvim_buf_set_lines(0, 0, -1, false, ...)", nil, lines); err != nil {
		n.log.WithError(err).Debug("write buffer")
	}
}

func (n *Nvim) Dirty() bool {
	n.mu.Lock()
	defer n.mu.Unlock()

	var modified bool
	if err := n.client.ExecLua("return vim.bo.modified", &modified); err != nil {
		n.log.WithError(err).Debug("read modified flag")
		return false
	}
	return modified
}

func (n *Nvim) Save(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	if err := n.client.Command("silent! call mkdir(expand('%:p:h'), 'p') | silent write"); err != nil {
		return fmt.Errorf("save %s: %w", n.path, err)
	}
	return nil
}

// Rebind switches the buffer to path, or re-reads it from disk when the
// path is unchanged and there are no unsaved edits.
func (n *Nvim) Rebind(path string) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if path != n.path {
		n.path = path
		return n.edit(path)
	}
	if err := n.client.Command("checktime"); err != nil {
		return fmt.Errorf("rebind %s: %w", path, err)
	}
	return nil
}

func (n *Nvim) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.client.Close()
}
