package atomicx

// Bool 原子布尔值
type Bool struct {
	ref *Reference[bool]
}

func NewBool(v bool) *Bool {
	return &Bool{ref: NewReference(v)}
}

func NewBoolWith(strategy Strategy, v bool) *Bool {
	return &Bool{ref: NewReferenceWith(strategy, v)}
}

func (b *Bool) Get() bool    { return b.ref.Get() }
func (b *Bool) Set(v bool)   { b.ref.Set(v) }
func (b *Bool) IsTrue() bool { return b.ref.Get() }

// MakeTrue 由 false 变为 true 时返回 true
func (b *Bool) MakeTrue() bool {
	return b.ref.CompareAndSwap(false, true) || b.retry(false, true)
}

// MakeFalse 由 true 变为 false 时返回 true
func (b *Bool) MakeFalse() bool {
	return b.ref.CompareAndSwap(true, false) || b.retry(true, false)
}

// retry 互斥锁实现下 CAS 可能因为竞争失败，需要确认当前值后重试
func (b *Bool) retry(from, to bool) bool {
	for b.ref.Get() == from {
		if b.ref.CompareAndSwap(from, to) {
			return true
		}
	}
	return false
}

// Int64 原子整数
type Int64 struct {
	ref *Reference[int64]
}

func NewInt64(v int64) *Int64 {
	return &Int64{ref: NewReference(v)}
}

func NewInt64With(strategy Strategy, v int64) *Int64 {
	return &Int64{ref: NewReferenceWith(strategy, v)}
}

func (i *Int64) Get() int64  { return i.ref.Get() }
func (i *Int64) Set(v int64) { i.ref.Set(v) }

// Add 返回相加后的值
func (i *Int64) Add(delta int64) int64 {
	return i.ref.Update(func(v int64) int64 { return v + delta })
}

func (i *Int64) Increment() int64 { return i.Add(1) }
func (i *Int64) Decrement() int64 { return i.Add(-1) }

func (i *Int64) Update(f func(int64) int64) int64 {
	return i.ref.Update(f)
}

func (i *Int64) CompareAndSet(expected, v int64) bool {
	return i.ref.CompareAndSwap(expected, v)
}
