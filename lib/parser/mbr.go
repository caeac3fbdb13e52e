package parser

import (
	"bytes"
	"encoding/binary"
	"histex/lib/cnst"
	"histex/lib/fio"
	"histex/lib/structs"
	"io"

	"github.com/pkg/errors"
)

const (
	mbrSignature    = 0xaa55
	typeEmpty       = 0x00
	typeExtendedCHS = 0x05
	typeExtendedLBA = 0x0f
	typeGPT         = 0xee
	maxLogical      = 128
)

type partitionEntry struct {
	Status        byte
	CHSFirst      [3]byte
	PartitionType byte
	CHSLast       [3]byte
	FirstLBA      uint32
	SectorCount   uint32
}

type bootRecord struct {
	Code       [446]byte
	Partitions [4]partitionEntry
	Signature  uint16
}

// probeVolumeSystem hand-parses the partition table straight from the byte
// source, so it works for evidence containers diskfs cannot open. Extended
// partitions are followed through their EBR chain; a protective 0xEE entry
// hands over to the GPT parser.
func probeVolumeSystem(img fio.Image) ([]structs.Partition, error) {
	record, err := readBootRecord(img, 0)
	if err != nil {
		return nil, err
	}
	if record.Signature != mbrSignature {
		return nil, errors.New("missing boot signature")
	}
	// A bare filesystem has the same 0xaa55 signature as an MBR. Its OEM
	// name gives it away before the entry table is misread as partitions.
	if isBareFilesystem(record) {
		return nil, errors.New("bare filesystem, no volume system")
	}

	var plist []structs.Partition
	for _, entry := range record.Partitions {
		if entry.PartitionType == typeGPT {
			return parseGPT(img)
		}

		partition := structs.Partition{
			Index:       uint32(len(plist)),
			Start:       int64(entry.FirstLBA) * cnst.SectorSize,
			Size:        int64(entry.SectorCount) * cnst.SectorSize,
			Allocated:   entry.PartitionType != typeEmpty,
			Description: mbrTypeName(entry.PartitionType),
		}
		plist = append(plist, partition)

		if entry.PartitionType == typeExtendedCHS || entry.PartitionType == typeExtendedLBA {
			logical, err := walkExtended(img, int64(entry.FirstLBA), uint32(len(plist)))
			if err != nil {
				continue
			}
			plist = append(plist, logical...)
		}
	}

	plist = prune(plist)
	if plist == nil {
		return nil, errors.New("no allocated partitions in table")
	}
	return plist, nil
}

// walkExtended follows the EBR chain inside an extended partition. Every
// link holds one logical partition plus an optional pointer to the next
// EBR, both relative to the extended partition base. Corrupt chains can
// link back on themselves, so the walk is bounded by hop count and a
// visited-LBA set, not by how many partitions it yields.
func walkExtended(img fio.Image, baseLBA int64, nextIndex uint32) ([]structs.Partition, error) {
	var logical []structs.Partition
	currentLBA := baseLBA
	visited := make(map[int64]bool)

	for hops := 0; hops < maxLogical; hops++ {
		if visited[currentLBA] {
			break
		}
		visited[currentLBA] = true

		record, err := readBootRecord(img, currentLBA*cnst.SectorSize)
		if err != nil || record.Signature != mbrSignature {
			break
		}

		entry := record.Partitions[0]
		if entry.PartitionType != typeEmpty {
			logical = append(logical, structs.Partition{
				Index:       nextIndex + uint32(len(logical)),
				Start:       (currentLBA + int64(entry.FirstLBA)) * cnst.SectorSize,
				Size:        int64(entry.SectorCount) * cnst.SectorSize,
				Allocated:   true,
				Description: mbrTypeName(entry.PartitionType),
			})
		}

		next := record.Partitions[1]
		if next.PartitionType == typeEmpty || next.FirstLBA == 0 {
			break
		}
		currentLBA = baseLBA + int64(next.FirstLBA)
	}

	return logical, nil
}

func readBootRecord(img fio.Image, offset int64) (bootRecord, error) {
	var record bootRecord
	section := io.NewSectionReader(img, offset, cnst.SectorSize)
	err := binary.Read(section, binary.LittleEndian, &record)
	return record, err
}

func isBareFilesystem(record bootRecord) bool {
	oemNames := [][]byte{
		[]byte("NTFS"),
		[]byte("EXFAT"),
		[]byte("MSDOS"),
		[]byte("MSWIN"),
		[]byte("FAT"),
	}
	oem := record.Code[3:11]
	for _, name := range oemNames {
		if bytes.HasPrefix(oem, name) {
			return true
		}
	}
	return false
}

func mbrTypeName(partitionType byte) string {
	switch partitionType {
	case typeEmpty:
		return "Unallocated"
	case 0x01, 0x04, 0x06, 0x0e:
		return "FAT16"
	case typeExtendedCHS, typeExtendedLBA:
		return "Extended"
	case 0x07:
		return "NTFS / exFAT (0x07)"
	case 0x0b, 0x0c:
		return "FAT32"
	case 0x82:
		return "Linux swap"
	case 0x83:
		return "Linux"
	case 0x8e:
		return "Linux LVM"
	case typeGPT:
		return "GPT protective"
	case 0xef:
		return "EFI system"
	default:
		return "Unknown"
	}
}
