package states

import "github.com/getmockd/provider/pkg/fixture"

// State names used by the recorded contracts.
const (
	DataPresent = "data count is > 0"
	DataAbsent  = "data count is == 0"

	AnimalsPresent = "animals count is > 0"
	AnimalsAbsent  = "animals count is == 0"
)

// RegisterDefaults registers the standard hooks for the store's variant. The
// "present" states restore the default fixture (1000, or the three seed
// animals); the "absent" states empty it.
func RegisterDefaults(d *Dispatcher, store *fixture.Store) {
	kind := store.Kind()
	present := func() error {
		store.Set(fixture.Default(kind))
		return nil
	}
	absent := func() error {
		store.Set(fixture.Empty(kind))
		return nil
	}

	d.Register(DataPresent, present)
	d.Register(DataAbsent, absent)
	d.Register(AnimalsPresent, present)
	d.Register(AnimalsAbsent, absent)
}
