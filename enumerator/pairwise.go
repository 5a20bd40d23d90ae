package enumerator

import (
	"math"

	"combgen/domain"
	"combgen/tuple"
)

// Pairwise 构造覆盖任意两个取值域之间全部值对的元组序列，
// 通常远少于穷举的组合数。
//
// 对每两个维度维护一张计分表，记录每个值对已被覆盖的次数。每一步先为
// 尚未确定的维度寻找计分最低的值对；第一轮只有在找到未覆盖（计分为 0）
// 的值对之后才开始记录，以确保剩余的未覆盖值对能被发现，第二轮补全其余
// 维度。第一轮找不到任何未覆盖值对时枚举结束。
//
// 结果是贪心近似，不保证最少，但对给定的集合是确定的。
// 只有零个或一个取值域时退化为 Sequential。
type Pairwise struct {
	domainBase
	gen      *pairwiseGenerator
	fallback *Sequential
	indices  []int
}

// NewPairwise 创建成对覆盖枚举器
func NewPairwise(c *domain.Collection) (*Pairwise, error) {
	base, err := newDomainBase(c)
	if err != nil {
		return nil, err
	}
	e := &Pairwise{domainBase: base}
	if c.Len() <= 1 {
		e.fallback, err = NewSequential(c)
		if err != nil {
			return nil, err
		}
		return e, nil
	}
	e.gen = newPairwiseGenerator(c.Counts())
	e.indices = make([]int, c.Len())
	return e, nil
}

func (e *Pairwise) Reset() {
	if e.fallback != nil {
		e.fallback.Reset()
		return
	}
	e.rewind()
	e.gen.reset()
}

func (e *Pairwise) MoveNext() bool {
	if e.fallback != nil {
		return e.fallback.MoveNext()
	}
	if e.state == Exhausted {
		return false
	}
	if !e.gen.next(e.indices) {
		e.exhaust()
		return false
	}
	e.position(e.tupleAt(e.indices))
	return true
}

func (e *Pairwise) Current() (tuple.Tuple, error) {
	if e.fallback != nil {
		return e.fallback.Current()
	}
	return e.cursor.Current()
}

// State 当前游标状态
func (e *Pairwise) State() State {
	if e.fallback != nil {
		return e.fallback.State()
	}
	return e.state
}

// scoreTable 两个维度之间的值对计分，swapped 表示共享同一矩阵的反向视图
type scoreTable struct {
	scores  [][]int
	swapped bool
}

func (t scoreTable) get(first, second int) int {
	if t.swapped {
		return t.scores[second][first]
	}
	return t.scores[first][second]
}

func (t scoreTable) inc(first, second int) {
	if t.swapped {
		t.scores[second][first]++
	} else {
		t.scores[first][second]++
	}
}

type pairwiseGenerator struct {
	counts []int
	dims   int
	tables [][]scoreTable
	owned  [][][]int
}

func newPairwiseGenerator(counts []int) *pairwiseGenerator {
	dims := len(counts)
	g := &pairwiseGenerator{counts: counts, dims: dims, tables: make([][]scoreTable, dims)}
	for i := range g.tables {
		g.tables[i] = make([]scoreTable, dims)
	}
	for i := 0; i < dims; i++ {
		for j := 0; j < i; j++ {
			scores := make([][]int, counts[i])
			for k := range scores {
				scores[k] = make([]int, counts[j])
			}
			g.tables[i][j] = scoreTable{scores: scores}
			g.tables[j][i] = scoreTable{scores: scores, swapped: true}
			g.owned = append(g.owned, scores)
		}
	}
	return g
}

func (g *pairwiseGenerator) reset() {
	for _, scores := range g.owned {
		for _, row := range scores {
			clear(row)
		}
	}
}

// next 填充下一组下标，没有未覆盖的值对时返回 false
func (g *pairwiseGenerator) next(indices []int) bool {
	for i := range indices {
		indices[i] = -1
	}

	foundUncovered := false
	bestFirst, bestSecond, bestSecondDim := 0, 0, 0

	for fill := false; ; fill = true {
		for firstDim := 0; firstDim < g.dims; firstDim++ {
			if indices[firstDim] >= 0 {
				continue
			}

			firstCount := g.counts[firstDim]
			bestScore := math.MaxInt
			for secondDim := 0; secondDim < g.dims; secondDim++ {
				if secondDim == firstDim {
					continue
				}
				table := g.tables[firstDim][secondDim]

				if chosen := indices[secondDim]; chosen >= 0 {
					// 第二个维度已确定，只搜索第一个维度的下标
					for fi := 0; fi < firstCount; fi++ {
						if score := table.get(fi, chosen); score < bestScore {
							bestScore = score
							bestFirst, bestSecond, bestSecondDim = fi, chosen, secondDim
						}
					}
					continue
				}

				secondCount := g.counts[secondDim]
				for fi := 0; fi < firstCount; fi++ {
					for si := 0; si < secondCount; si++ {
						if score := table.get(fi, si); score < bestScore {
							bestScore = score
							bestFirst, bestSecond, bestSecondDim = fi, si, secondDim
						}
					}
				}
			}

			if bestScore == 0 {
				foundUncovered = true
			}

			// 已覆盖的值对推迟到第二轮再记录
			if foundUncovered || fill {
				indices[firstDim] = bestFirst
				indices[bestSecondDim] = bestSecond
			}
		}

		if fill {
			break
		}
		if !foundUncovered {
			return false
		}
	}

	for i := 0; i < g.dims; i++ {
		for j := i + 1; j < g.dims; j++ {
			g.tables[i][j].inc(indices[i], indices[j])
		}
	}
	return true
}
