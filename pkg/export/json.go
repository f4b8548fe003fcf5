package export

import (
	"os"

	"github.com/vanderheijden86/laneboard/pkg/model"
	"github.com/vanderheijden86/laneboard/pkg/wire"
)

func writeJSON(s model.BoardState, path string) error {
	data, err := wire.MarshalSnapshotIndent(s)
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
