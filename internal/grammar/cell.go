package grammar

// Cell is the state held at one grid coordinate.
type Cell struct {
	Category Category
	// Age counts ticks since the cell was last written or woken.
	Age int
	// Live caches which rules may start here. A nil mask written through
	// Grid.Set means fully live.
	Live LiveMask
}
