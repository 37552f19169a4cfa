package memory_test

import (
	"testing"

	"github.com/JonMunkholm/entrydesk/internal/core"
	"github.com/JonMunkholm/entrydesk/internal/store/memory"
	"github.com/JonMunkholm/entrydesk/internal/store/storetest"
)

func TestStoreContract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) core.Store { return memory.New() })
}
