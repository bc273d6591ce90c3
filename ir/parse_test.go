package ir

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	const text = `func @main(%0: tensor, %1: tensor) -> (tensor) {
  %2 = "x.const"() : tensor
  %3 = replicate[2](%0, %1) (%4: tensor) : tensor {
    %5 = shape(%4) : tensor
    %6 = "x.add"(%5, %2) : tensor
    return %6
  }
  return %3
}
`

	ctx := context.Background()

	f, err := ParseFunc(ctx, []byte(text))
	require.NoError(t, err)

	require.Equal(t, text, f.String())
}

func TestRoundTripResources(t *testing.T) {
	const text = `func @read(%0: resource) -> (tensor) {
  %1 = readvar(%0) : tensor
  %2 = varshape(%0) : tensor
  %3 = "x.add"(%1, %2) : tensor
  return %3
}
`

	ctx := context.Background()

	f, err := ParseFunc(ctx, []byte(text))
	require.NoError(t, err)

	require.Equal(t, text, f.String())
}

func TestParseModule(t *testing.T) {
	const text = `
// two functions
func @a(%x: tensor) -> (tensor) {
  return %x
}

func @b() {
  return
}
`

	fs, err := ParseModule(context.Background(), []byte(text))
	require.NoError(t, err)
	require.Len(t, fs, 2)

	require.Equal(t, "a", fs[0].Name)
	require.Equal(t, "b", fs[1].Name)
	require.Len(t, fs[0].In, 1)
	require.Len(t, fs[1].In, 0)
}

func TestParseErrors(t *testing.T) {
	for _, text := range []string{
		`func @a() { return %undef }`,
		`func @a() { %x = bogus() : tensor return }`,
		`func @a() { %x = shape() }`,
		`func @a() { %x, %y = shape() : tensor return }`,
		`func @a() { replicate[2]() (%r: tensor) { return } return }`,
	} {
		_, err := ParseFunc(context.Background(), []byte(text))
		require.Error(t, err, "text: %s", text)
	}
}

func TestParseBuildsUses(t *testing.T) {
	f, err := ParseFunc(context.Background(), []byte(`func @u(%x: tensor) {
  %a = shape(%x) : tensor
  %b = "x.add"(%a, %a) : tensor
  return
}
`))
	require.NoError(t, err)

	args := f.Block(f.Entry()).Args
	require.Equal(t, 1, f.NumUses(args[0]))

	a := f.Block(f.Entry()).Ops[0]
	require.Equal(t, 2, f.NumUses(f.Op(a).Results[0]))
}
