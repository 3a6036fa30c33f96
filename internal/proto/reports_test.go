package proto

import (
	"fmt"
	"os"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProtoFileMatchesServiceDesc(t *testing.T) {
	src, err := os.ReadFile(ReportsServiceDesc.Metadata.(string))
	require.NoError(t, err)
	text := string(src)

	assert.Contains(t, text, "package fitmacro.v1;")
	assert.Contains(t, text, "service Reports {")
	assert.Equal(t, "fitmacro.v1.Reports", ServiceName)

	rpc := regexp.MustCompile(`rpc\s+(\w+)\(google\.protobuf\.Struct\)\s+returns\s+\(google\.protobuf\.Struct\);`)
	var declared []string
	for _, m := range rpc.FindAllStringSubmatch(text, -1) {
		declared = append(declared, m[1])
	}

	var described []string
	for _, m := range ReportsServiceDesc.Methods {
		described = append(described, m.MethodName)
	}
	assert.Equal(t, described, declared)
}

func TestMethodNames(t *testing.T) {
	for name, full := range map[string]string{
		"Register":      RegisterMethod,
		"Login":         LoginMethod,
		"RefreshToken":  RefreshTokenMethod,
		"DailySummary":  DailySummaryMethod,
		"CalorieSeries": CalorieSeriesMethod,
	} {
		assert.Equal(t, fmt.Sprintf("/%s/%s", ServiceName, name), full)
	}
}
