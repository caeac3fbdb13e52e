package parser

import (
	"encoding/binary"
	"histex/lib/cnst"
	"histex/lib/fio"
	"histex/lib/structs"
	"io"
	"unicode/utf16"

	"github.com/pkg/errors"
)

const (
	gptHeaderLBA  = 1
	gptSignature  = 0x5452415020494645 // "EFI PART"
	maxGPTEntries = 128
)

type gptHeader struct {
	Signature      uint64
	Revision       uint32
	HeaderSize     uint32
	HeaderCRC      uint32
	_              uint32
	CurrentLBA     uint64
	BackupLBA      uint64
	FirstUsableLBA uint64
	LastUsableLBA  uint64
	DiskGUID       [16]byte
	EntriesLBA     uint64
	EntryCount     uint32
	EntrySize      uint32
	EntriesCRC     uint32
}

type gptEntry struct {
	TypeGUID   [16]byte
	UniqueGUID [16]byte
	FirstLBA   uint64
	LastLBA    uint64
	Attributes uint64
	Name       [36]uint16
}

func parseGPT(img fio.Image) ([]structs.Partition, error) {
	var header gptHeader
	section := io.NewSectionReader(img, gptHeaderLBA*cnst.SectorSize, cnst.SectorSize)
	if err := binary.Read(section, binary.LittleEndian, &header); err != nil {
		return nil, err
	}
	if header.Signature != gptSignature {
		return nil, errors.New("missing GPT signature behind protective MBR")
	}

	count := header.EntryCount
	if count > maxGPTEntries {
		count = maxGPTEntries
	}
	entrySize := int64(header.EntrySize)
	if entrySize < 128 {
		return nil, errors.Errorf("implausible GPT entry size %d", entrySize)
	}

	var plist []structs.Partition
	base := int64(header.EntriesLBA) * cnst.SectorSize
	for index := uint32(0); index < count; index++ {
		var entry gptEntry
		section := io.NewSectionReader(img, base+int64(index)*entrySize, entrySize)
		if err := binary.Read(section, binary.LittleEndian, &entry); err != nil {
			return nil, err
		}

		allocated := entry.TypeGUID != [16]byte{}
		if !allocated {
			continue
		}
		plist = append(plist, structs.Partition{
			Index:       index,
			Start:       int64(entry.FirstLBA) * cnst.SectorSize,
			Size:        int64(entry.LastLBA-entry.FirstLBA+1) * cnst.SectorSize,
			Allocated:   true,
			Description: gptEntryName(entry),
		})
	}

	if len(plist) == 0 {
		return nil, errors.New("GPT holds no allocated partitions")
	}
	return plist, nil
}

func gptEntryName(entry gptEntry) string {
	end := 0
	for end < len(entry.Name) && entry.Name[end] != 0 {
		end++
	}
	if end == 0 {
		return "GPT partition"
	}
	return string(utf16.Decode(entry.Name[:end]))
}
