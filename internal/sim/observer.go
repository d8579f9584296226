package sim

// Every forwards only frames whose tick is a multiple of n to o.
func Every(n int, o Observer) Observer {
	if n <= 1 {
		return o
	}
	return &every{n: n, next: o}
}

type every struct {
	n    int
	next Observer
}

func (e *every) OnFrame(f Frame) error {
	if f.Tick%e.n != 0 {
		return nil
	}
	return e.next.OnFrame(f)
}
