package app

import (
	"github.com/specialistvlad/mondir/internal/registry"
	"github.com/specialistvlad/mondir/modules/casing"
	"github.com/specialistvlad/mondir/modules/collections"
	"github.com/specialistvlad/mondir/modules/encoding"
	"github.com/specialistvlad/mondir/modules/env_vars"
	"github.com/specialistvlad/mondir/modules/text"
)

// coreModules is the definitive list of all function modules that are
// compiled into the mondir binary.
var coreModules = []registry.Module{
	&text.Module{},
	&collections.Module{},
	&encoding.Module{},
	&casing.Module{},
	&env_vars.Module{},
}
