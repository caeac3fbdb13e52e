package parser

import (
	"histex/lib/fio"
	"histex/lib/structs"
	"path/filepath"

	diskfs "github.com/diskfs/go-diskfs"
	"github.com/diskfs/go-diskfs/partition/gpt"
	"github.com/diskfs/go-diskfs/partition/mbr"
	"github.com/sirupsen/logrus"
)

// GetPartitions enumerates the volume system of an image. It is a
// best-effort probe: any parse failure means "no volume system" and callers
// must treat the whole image as one filesystem at offset 0. Unallocated
// table entries are returned too; callers filter on Allocated.
func GetPartitions(img fio.Image) []structs.Partition {
	if img.Path() != "" && !fio.IsEvidenceExt(filepath.Ext(img.Path())) {
		plist, err := parseDiskfs(img.Path())
		if err == nil && len(plist) > 0 {
			return plist
		}
		logrus.WithField("image", img.Path()).Debug("no partition table via diskfs, probing sectors")
	}

	plist, err := probeVolumeSystem(img)
	if err != nil {
		logrus.WithError(err).Debug("no recognizable volume system")
		return nil
	}
	return plist
}

func parseDiskfs(path string) ([]structs.Partition, error) {
	disk, err := diskfs.Open(path)
	if err != nil {
		return nil, err
	}

	table, err := disk.GetPartitionTable()
	if err != nil {
		return nil, err
	}

	var plist []structs.Partition
	switch t := table.(type) {
	case *mbr.Table:
		for index, partition := range t.Partitions {
			if partition == nil {
				continue
			}
			plist = append(plist, structs.Partition{
				Index:       uint32(index),
				Start:       partition.GetStart(),
				Size:        partition.GetSize(),
				Allocated:   byte(partition.Type) != 0x00,
				Description: mbrTypeName(byte(partition.Type)),
			})
		}
	case *gpt.Table:
		for index, partition := range t.Partitions {
			if partition == nil {
				continue
			}
			desc := partition.Name
			if desc == "" {
				desc = string(partition.Type)
			}
			plist = append(plist, structs.Partition{
				Index:       uint32(index),
				Start:       partition.GetStart(),
				Size:        partition.GetSize(),
				Allocated:   partition.Type != gpt.Unused,
				Description: desc,
			})
		}
	default:
		for index, partition := range table.GetPartitions() {
			plist = append(plist, structs.Partition{
				Index:       uint32(index),
				Start:       partition.GetStart(),
				Size:        partition.GetSize(),
				Allocated:   partition.GetSize() > 0,
				Description: "partition",
			})
		}
	}

	return prune(plist), nil
}

// prune drops entries that cannot be real partitions so a decoy boot-sector
// signature never yields a phantom volume system.
func prune(plist []structs.Partition) []structs.Partition {
	allocated := 0
	for _, partition := range plist {
		if partition.Allocated && partition.Start > 0 && partition.Size > 0 {
			allocated++
		}
	}
	if allocated == 0 {
		return nil
	}
	return plist
}
