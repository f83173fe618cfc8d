package reportapi

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"sync"

	mapset "github.com/deckarep/golang-set"
	"github.com/pakana/projector/log"
	"github.com/pakana/projector/tokens/stellar"
)

var (
	blockList     = mapset.NewSet()
	blockListLock sync.RWMutex
)

// LoadBlockList replaces the block list with the accounts in fileName.
// One account per line, hex or G... address; blank lines and lines
// starting with '#' are ignored. On error the old list is kept.
func LoadBlockList(fileName string) error {
	file, err := os.Open(fileName)
	if err != nil {
		return err
	}
	defer file.Close()

	newList := mapset.NewSet()
	scanner := bufio.NewScanner(file)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		id, err := stellar.ParseAccountID(line)
		if err != nil {
			return fmt.Errorf("%v:%v: %w", fileName, lineNo, err)
		}
		newList.Add(id)
	}
	if err = scanner.Err(); err != nil {
		return err
	}

	blockListLock.Lock()
	blockList = newList
	blockListLock.Unlock()
	log.Info("load block list success", "file", fileName, "count", newList.Cardinality())
	return nil
}

// IsBlocked is account (hex id) in block list
func IsBlocked(id string) bool {
	blockListLock.RLock()
	defer blockListLock.RUnlock()
	return blockList.Contains(id)
}

// BlockedCount block list size
func BlockedCount() int {
	blockListLock.RLock()
	defer blockListLock.RUnlock()
	return blockList.Cardinality()
}
