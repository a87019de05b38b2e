package types

import "abigen/internal/source"

var noSpan = source.NoSpan
