package webview

// Delegate receives page-load lifecycle events from a Proxy.
//
// For every load that is not vetoed, DidStartLoad is followed by exactly one
// of DidFinishLoad or DidFailLoadWithError. ShouldStartLoadWithRequest is
// asked before each navigation; returning false cancels it.
type Delegate interface {
	DidStartLoad()
	DidFinishLoad()
	DidFailLoadWithError(err error)
	ShouldStartLoadWithRequest(req *Request) bool
}

// DelegateFuncs adapts a set of closures to Delegate. Nil fields are no-ops
// and a nil ShouldStart allows every navigation.
type DelegateFuncs struct {
	Start       func()
	Finish      func()
	Fail        func(err error)
	ShouldStart func(req *Request) bool
}

func (d *DelegateFuncs) DidStartLoad() {
	if d.Start != nil {
		d.Start()
	}
}

func (d *DelegateFuncs) DidFinishLoad() {
	if d.Finish != nil {
		d.Finish()
	}
}

func (d *DelegateFuncs) DidFailLoadWithError(err error) {
	if d.Fail != nil {
		d.Fail(err)
	}
}

func (d *DelegateFuncs) ShouldStartLoadWithRequest(req *Request) bool {
	if d.ShouldStart == nil {
		return true
	}
	return d.ShouldStart(req)
}
