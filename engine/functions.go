package engine

import (
	"database/sql/driver"
	"fmt"
	"sync"

	"github.com/viant/imgsim/score"
	sqlite "modernc.org/sqlite"
)

var registerOnce sync.Once

// RegisterFunctions registers imgsim_similarity(good, keypoints_a,
// keypoints_b) with the driver. Only connections opened after the first call
// see it; later calls are no-ops.
func RegisterFunctions() error {
	var err error
	registerOnce.Do(func() {
		err = sqlite.RegisterDeterministicScalarFunction("imgsim_similarity", 3, similarityImpl)
	})
	return err
}

func asInt(name string, arg driver.Value) (int, bool, error) {
	switch v := arg.(type) {
	case nil:
		return 0, false, nil
	case int64:
		return int(v), true, nil
	case float64:
		return int(v), true, nil
	default:
		return 0, false, fmt.Errorf("imgsim_similarity: unsupported %s type %T; want INTEGER", name, arg)
	}
}

func similarityImpl(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	if len(args) != 3 {
		return nil, fmt.Errorf("imgsim_similarity: expected 3 arguments, got %d", len(args))
	}
	var vals [3]int
	for i, name := range []string{"good", "keypoints_a", "keypoints_b"} {
		v, ok, err := asInt(name, args[i])
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, nil
		}
		vals[i] = v
	}
	return score.Similarity(vals[0], vals[1], vals[2]), nil
}
