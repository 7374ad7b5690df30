package rerank

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// TokenCounter estimates document size before it is sent.
type TokenCounter interface {
	Count(text string) int
}

// tiktokenCounter loads cl100k_base on first use. A load failure disables
// counting rather than blocking requests.
type tiktokenCounter struct {
	once sync.Once
	tk   *tiktoken.Tiktoken
	err  error
}

func (c *tiktokenCounter) load() error {
	c.once.Do(func() {
		c.tk, c.err = tiktoken.GetEncoding("cl100k_base")
	})
	return c.err
}

func (c *tiktokenCounter) Count(text string) int {
	if text == "" || c.load() != nil {
		return 0
	}
	return len(c.tk.Encode(text, nil, nil))
}
