package engine

// PegCount is the number of pegs on every board.
const PegCount = 3

// Peg is a stack of disk ranks, bottom first. Rank 0 is the smallest disk.
type Peg struct {
	disks []int
}

// Len returns how many disks sit on the peg.
func (p *Peg) Len() int {
	return len(p.disks)
}

// Empty reports whether the peg holds no disks.
func (p *Peg) Empty() bool {
	return len(p.disks) == 0
}

// Top returns the rank of the topmost disk. ok is false on an empty peg.
func (p *Peg) Top() (rank int, ok bool) {
	if len(p.disks) == 0 {
		return 0, false
	}
	return p.disks[len(p.disks)-1], true
}

// Accepts reports whether a disk of the given rank may be placed on the peg.
func (p *Peg) Accepts(rank int) bool {
	top, ok := p.Top()
	return !ok || rank < top
}

func (p *Peg) push(rank int) {
	p.disks = append(p.disks, rank)
}

func (p *Peg) pop() int {
	last := len(p.disks) - 1
	rank := p.disks[last]
	p.disks = p.disks[:last]
	return rank
}

// Disks returns a copy of the peg contents, bottom first.
func (p *Peg) Disks() []int {
	out := make([]int, len(p.disks))
	copy(out, p.disks)
	return out
}

func validPeg(i int) bool {
	return i >= 0 && i < PegCount
}

// Stacked reports whether ranks strictly decrease from bottom to top.
func Stacked(disks []int) bool {
	for i := 1; i < len(disks); i++ {
		if disks[i] >= disks[i-1] {
			return false
		}
	}
	return true
}

// Disk display widths, in pixels, for the smallest and largest disk.
const (
	DiskMinWidth = 60
	DiskMaxWidth = 240
)

// DiskWidth returns the display width of a disk when n disks are in play.
// Widths are spread linearly between min and max.
func DiskWidth(rank, n, min, max int) int {
	if n <= 1 {
		return min
	}
	return min + rank*(max-min)/(n-1)
}
