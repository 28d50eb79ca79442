package pathfinder

// searchNode is a frontier entry. Entries are never updated in place: a cheaper route pushes
// a new entry and the stale one is skipped when popped.
type searchNode struct {
	node     GraphNode
	cost     int
	priority int
	depth    int // turns from the start node
	seq      int // insertion order, breaks priority ties
	index    int
	parent   *searchNode
}

type frontier []*searchNode

func (f frontier) Len() int { return len(f) }

func (f frontier) Less(i, j int) bool {
	if f[i].priority != f[j].priority {
		return f[i].priority < f[j].priority
	}
	return f[i].seq < f[j].seq
}

func (f frontier) Swap(i, j int) {
	f[i], f[j] = f[j], f[i]
	f[i].index = i
	f[j].index = j
}

func (f *frontier) Push(x any) {
	item := x.(*searchNode)
	item.index = len(*f)
	*f = append(*f, item)
}

func (f *frontier) Pop() any {
	old := *f
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*f = old[:n-1]
	return item
}
