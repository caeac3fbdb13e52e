package cli

import (
	"encoding/json"
	"fmt"
	"histex/lib/catalog"
	"histex/lib/util"

	"github.com/dgraph-io/badger/v4"
)

func connectCatalog(dbpath string) (*badger.DB, error) {
	var err error
	if dbpath == "" {
		dbpath, err = util.GetDBPath()
		if err != nil {
			return nil, err
		}
	}
	return catalog.Connect(dbpath)
}

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
