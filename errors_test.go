package vgcanvas

import "testing"

func TestStackOverflowPanicPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected stackOverflowPanic to panic")
		}
	}()
	stackOverflowPanic("transform", 64)
}

func TestDiagnosticDoesNotPanic(t *testing.T) {
	diagnostic("unreachable path op", "op", "closePath")
}

func TestSentinelErrorsAreDistinct(t *testing.T) {
	errs := []error{ErrOutOfAtlasSpace, ErrStaleBakedGeometry, ErrUnknownCustomDrawer, ErrSingularTransform}
	for i := range errs {
		for j := range errs {
			if i == j {
				continue
			}
			if errs[i] == errs[j] {
				t.Errorf("errs[%d] and errs[%d] should be distinct sentinel errors", i, j)
			}
		}
	}
}
