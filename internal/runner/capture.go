package runner

import (
	"strings"
	"sync"
)

// Capture 单次执行的输出缓冲，由调用方创建并在所有退出路径上释放
type Capture struct {
	mu       sync.Mutex
	lines    []string
	released bool
}

func NewCapture() *Capture {
	return &Capture{}
}

// WriteLine 释放之后的写入会被丢弃
func (c *Capture) WriteLine(line string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.released {
		return
	}
	c.lines = append(c.lines, line)
}

func (c *Capture) Text() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return strings.Join(c.lines, "\n")
}

func (c *Capture) Release() {
	c.mu.Lock()
	c.released = true
	c.mu.Unlock()
}
