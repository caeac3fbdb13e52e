package cli

import (
	"fmt"
	"histex/lib/util"
	"os"
	"strings"

	"github.com/fatih/color"
)

// ResetData deletes the run catalog. Extracted artifact files are left
// alone; they live wherever --output pointed.
func ResetData(dbpath string) error {
	var err error

	if dbpath == "" {
		dbpath, err = util.GetDBPath()
		if err != nil {
			return err
		}
	}

	color.Red("WARNING! This command will DELETE the run catalog at %s.", dbpath)
	fmt.Printf("Are you sure about this? [y/N] ")

	var in string
	fmt.Scanln(&in)
	in = strings.ToLower(in)

	if in != "y" {
		color.Blue("Your catalog is SAFE!")
		return nil
	}

	color.Red("Deleting the run catalog!")
	return os.RemoveAll(dbpath)
}
