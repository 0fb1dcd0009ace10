package modulemanager

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type fakeModule struct {
	id       string
	core     bool
	migrated bool
	inited   bool
	order    *[]string
}

func (f *fakeModule) ID() string   { return f.id }
func (f *fakeModule) Name() string { return f.id }
func (f *fakeModule) Core() bool   { return f.core }
func (f *fakeModule) Migrate(db *gorm.DB) error {
	f.migrated = true
	return nil
}
func (f *fakeModule) Init() error {
	f.inited = true
	*f.order = append(*f.order, f.id)
	return nil
}

func TestLoadAllOrdersCoreFirst(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	reg := &ModuleRegistry{modules: make(map[string]Module)}
	var order []string
	mods := []*fakeModule{
		{id: "zeta", core: false, order: &order},
		{id: "alpha", core: false, order: &order},
		{id: "system.core", core: true, order: &order},
	}
	for _, m := range mods {
		reg.Register(m)
	}

	require.NoError(t, reg.LoadAll(db))
	assert.Equal(t, []string{"system.core", "alpha", "zeta"}, order)
	for _, m := range mods {
		assert.True(t, m.migrated, m.id)
		assert.True(t, m.inited, m.id)
	}

	// A second load is a no-op.
	order = order[:0]
	require.NoError(t, reg.LoadAll(db))
	assert.Empty(t, order)
}

func TestGetAndListModules(t *testing.T) {
	reg := &ModuleRegistry{modules: make(map[string]Module)}
	var order []string
	reg.Register(&fakeModule{id: "alpha", order: &order})

	m, ok := reg.GetModule("alpha")
	require.True(t, ok)
	assert.Equal(t, "alpha", m.ID())

	_, ok = reg.GetModule("missing")
	assert.False(t, ok)

	assert.Len(t, reg.ListModules(), 1)
}
