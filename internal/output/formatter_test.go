package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type row struct {
	ID     string `json:"id"`
	Title  string `json:"title" label:"Title"`
	Price  string `json:"price" label:"Price"`
	Secret string `json:"-" label:"-"`
}

func newBuffers(mode string, resultsOnly bool) (Formatter, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	return New(mode, Options{Out: &out, Err: &errOut, ResultsOnly: resultsOnly}), &out, &errOut
}

func TestJSONPrintList(t *testing.T) {
	rows := []row{{ID: "1", Title: "Bike"}, {ID: "2", Title: "Desk"}}

	f, out, _ := newBuffers("json", false)
	require.NoError(t, f.PrintList(rows, nil))

	var envelope struct {
		Data  []row `json:"data"`
		Count int   `json:"count"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &envelope))
	assert.Equal(t, 2, envelope.Count)
	assert.Equal(t, rows, envelope.Data)

	f, out, _ = newBuffers("json", true)
	require.NoError(t, f.PrintList(rows, nil))
	var bare []row
	require.NoError(t, json.Unmarshal(out.Bytes(), &bare))
	assert.Equal(t, rows, bare)
}

func TestJSONErrorsAndStatusGoToStderr(t *testing.T) {
	f, out, errOut := newBuffers("json", false)

	f.PrintError(NewCLIError(ExitNotFound, "gone").WithHint("look elsewhere"))
	f.PrintSuccess("done")
	assert.Empty(t, out.String())

	dec := json.NewDecoder(errOut)
	var obj map[string]any
	require.NoError(t, dec.Decode(&obj))
	assert.Equal(t, "gone", obj["error"])
	assert.Equal(t, float64(ExitNotFound), obj["exit_code"])
	assert.Equal(t, "look elsewhere", obj["hint"])
}

func TestPlainPrint(t *testing.T) {
	f, out, _ := newBuffers("plain", false)
	require.NoError(t, f.Print(row{ID: "7", Title: "Bike", Secret: "x"}))

	assert.Equal(t, "ID\t7\nTitle\tBike\n", out.String(), "empty and hidden fields are skipped")
}

func TestPlainPrintList(t *testing.T) {
	f, out, _ := newBuffers("plain", false)
	cols := []Column{{Name: "ID", Key: "ID"}, {Name: "Title", Key: "Title", Width: 6}}

	require.NoError(t, f.PrintList([]*row{{ID: "1", Title: "Mountain bike"}}, cols))
	assert.Equal(t, "ID\tTitle\n1\tMou...\n", out.String())

	assert.Error(t, f.PrintList(row{}, cols))
}

func TestPlainPrintListMaps(t *testing.T) {
	f, out, _ := newBuffers("plain", false)
	cols := []Column{{Name: "Key", Key: "k"}, {Name: "Value", Key: "v"}}

	require.NoError(t, f.PrintList([]map[string]string{{"k": "a", "v": "1"}}, cols))
	assert.Equal(t, "Key\tValue\na\t1\n", out.String())
}

func TestPlainMessages(t *testing.T) {
	f, _, errOut := newBuffers("plain", false)
	f.PrintError(errors.New("nope"))
	f.PrintHint("try again")
	f.PrintWarning("image upload failed")
	f.PrintSuccess("Listing created")

	assert.Equal(t, "error: nope\nhint: try again\nwarning: image upload failed\nListing created\n", errOut.String())
}

func TestRichPrintContainsValues(t *testing.T) {
	f, out, errOut := newBuffers("rich", false)

	require.NoError(t, f.Print(row{ID: "7", Title: "Bike", Price: "10.00"}))
	assert.Contains(t, out.String(), "Bike")
	assert.Contains(t, out.String(), "10.00")

	out.Reset()
	require.NoError(t, f.PrintList([]row{}, []Column{{Name: "ID", Key: "ID"}}))
	assert.Empty(t, out.String())
	assert.Contains(t, errOut.String(), "(no results)")
}

func TestUnknownModeIsPlain(t *testing.T) {
	f, _, _ := newBuffers("yaml", false)
	_, ok := f.(*plainFormatter)
	assert.True(t, ok)
}
