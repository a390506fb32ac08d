package cache

import (
	"container/list"
	"context"
	"sync"
	"time"
)

// 文档注释：进程内 LRU（已渲染快照字节为值）
// 背景：未启用 Redis 时，滑块往返拖动产生的重复查询由本地缓存吸收；TTL 可调。
// 约束：容量按条目计；值为调用方不再修改的字节切片，读出后同样不得修改。
type LRU struct {
	mu   sync.Mutex
	cap  int
	ttl  time.Duration
	lst  *list.List
	dict map[string]*list.Element
	now  func() time.Time
}

type kv struct {
	k   string
	v   []byte
	exp time.Time
}

func NewLRU(capacity int, ttl time.Duration) *LRU {
	return &LRU{cap: capacity, ttl: ttl, lst: list.New(), dict: make(map[string]*list.Element), now: time.Now}
}

func (c *LRU) Get(_ context.Context, k string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.dict[k]; ok {
		it := e.Value.(kv)
		if c.ttl <= 0 || c.now().Before(it.exp) {
			c.lst.MoveToFront(e)
			return it.v, true
		}
		c.lst.Remove(e)
		delete(c.dict, k)
	}
	return nil, false
}

func (c *LRU) Set(_ context.Context, k string, v []byte) {
	if c.cap <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	it := kv{k: k, v: v, exp: c.now().Add(c.ttl)}
	if e, ok := c.dict[k]; ok {
		e.Value = it
		c.lst.MoveToFront(e)
		return
	}
	c.dict[k] = c.lst.PushFront(it)
	for c.lst.Len() > c.cap {
		back := c.lst.Back()
		delete(c.dict, back.Value.(kv).k)
		c.lst.Remove(back)
	}
}

func (c *LRU) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lst.Len()
}
