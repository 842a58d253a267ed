package catalog

import _ "embed"

//go:embed default.yaml
var defaultCatalogYAML []byte
