package index

import "sort"

// 文档注释：中心区间树节点
// 背景：每个节点选取端点中位数为中心，跨越中心的区间留在本节点，完全在左/右侧的下沉到子树。
// 约束：byFrom 按起点升序，byTo 按终点降序，查询时可在首个不满足处提前停止。
type node struct {
	center int64
	byFrom []int
	byTo   []int
	left   *node
	right  *node
}

func buildNode(es []entry, ids []int) *node {
	if len(ids) == 0 {
		return nil
	}
	pts := make([]int64, 0, len(ids)*2)
	for _, i := range ids {
		pts = append(pts, es[i].from, es[i].to)
	}
	sort.Slice(pts, func(a, b int) bool { return pts[a] < pts[b] })
	// 中心取自某个区间端点，该区间必然跨越中心，保证每层至少留下一条记录
	n := &node{center: pts[len(pts)/2]}
	var l, r []int
	for _, i := range ids {
		switch {
		case es[i].to < n.center:
			l = append(l, i)
		case es[i].from > n.center:
			r = append(r, i)
		default:
			n.byFrom = append(n.byFrom, i)
		}
	}
	n.byTo = append([]int(nil), n.byFrom...)
	sort.SliceStable(n.byFrom, func(a, b int) bool { return es[n.byFrom[a]].from < es[n.byFrom[b]].from })
	sort.SliceStable(n.byTo, func(a, b int) bool { return es[n.byTo[a]].to > es[n.byTo[b]].to })
	n.left = buildNode(es, l)
	n.right = buildNode(es, r)
	return n
}

// stab：对覆盖 p 的每条记录回调一次
func (n *node) stab(es []entry, p int64, fn func(int)) {
	for n != nil {
		switch {
		case p < n.center:
			for _, i := range n.byFrom {
				if es[i].from > p {
					break
				}
				fn(i)
			}
			n = n.left
		case p > n.center:
			for _, i := range n.byTo {
				if es[i].to < p {
					break
				}
				fn(i)
			}
			n = n.right
		default:
			for _, i := range n.byFrom {
				fn(i)
			}
			return
		}
	}
}
