package elo_test

import (
	"errors"
	"math"
	"testing"

	"github.com/okian/stadiums/internal/domain/elo"
	. "github.com/smartystreets/goconvey/convey"
)

func baseValues() map[string]float64 {
	return map[string]float64{
		elo.KeyEloInit:   1500,
		elo.KeyZ:         400,
		elo.KeyK:         20,
		elo.KeyB:         0.6,
		elo.KeyWTWeight:  0.2,
		elo.KeyReversion: 0.2,
	}
}

func TestNewConfig(t *testing.T) {
	Convey("Given raw rating config values", t, func() {
		Convey("When every key is present", func() {
			cfg, err := elo.NewConfig(baseValues())

			Convey("Then the config is built", func() {
				So(err, ShouldBeNil)
				So(cfg.EloInit, ShouldEqual, 1500)
				So(cfg.Z, ShouldEqual, 400)
				So(cfg.K, ShouldEqual, 20)
				So(cfg.B, ShouldEqual, 0.6)
				So(cfg.WTWeight, ShouldEqual, 0.2)
				So(cfg.Reversion, ShouldEqual, 0.2)
			})
		})

		Convey("When keys are missing", func() {
			values := baseValues()
			delete(values, elo.KeyZ)
			delete(values, elo.KeyB)
			_, err := elo.NewConfig(values)

			Convey("Then the error names each missing key", func() {
				So(errors.Is(err, elo.ErrMissingConfig), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "b, z")
			})
		})

		Convey("When the map is empty", func() {
			_, err := elo.NewConfig(nil)

			Convey("Then all keys are reported", func() {
				So(errors.Is(err, elo.ErrMissingConfig), ShouldBeTrue)
				for _, key := range elo.RequiredKeys {
					So(err.Error(), ShouldContainSubstring, key)
				}
			})
		})

		Convey("When z is zero", func() {
			values := baseValues()
			values[elo.KeyZ] = 0
			_, err := elo.NewConfig(values)

			Convey("Then the config is rejected", func() {
				So(errors.Is(err, elo.ErrInvalidConfig), ShouldBeTrue)
			})
		})

		Convey("When a value is not finite", func() {
			values := baseValues()
			values[elo.KeyK] = math.Inf(1)
			_, err := elo.NewConfig(values)

			Convey("Then the config is rejected", func() {
				So(errors.Is(err, elo.ErrInvalidConfig), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "k must be finite")
			})
		})

		Convey("When reversion weights do not sum to one", func() {
			values := baseValues()
			values[elo.KeyWTWeight] = 0.7
			values[elo.KeyReversion] = 0.6
			_, err := elo.NewConfig(values)

			Convey("Then the config is still accepted", func() {
				So(err, ShouldBeNil)
			})
		})
	})
}
