package index

import "sync/atomic"

// 文档注释：当前索引的原子持有者
// 背景：语料重载时整体替换索引，读路径无锁；已在进行的查询继续使用旧索引直至返回。
// 约束：只允许 Store 新构建的索引，不得修改已发布的索引。
type Holder struct{ p atomic.Pointer[Index] }

func NewHolder(x *Index) *Holder {
	h := &Holder{}
	if x != nil {
		h.p.Store(x)
	}
	return h
}

// Load：未就绪时返回 nil
func (h *Holder) Load() *Index { return h.p.Load() }

// Store：发布新索引，返回被替换的旧索引
func (h *Holder) Store(x *Index) *Index { return h.p.Swap(x) }
