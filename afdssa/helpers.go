package afdssa

import (
	"time"

	"github.com/holger24/AFD-sub005/internal/bitflags"
)

func timeDuration(ns int64) time.Duration { return time.Duration(ns) }

func bitflagsFromUint64(v uint64) bitflags.Set { return bitflags.FromUint64(v) }
