package idgen

import (
	"os"
	"strconv"

	"github.com/fundwit/go-commons/types"
	"github.com/sirupsen/logrus"
	"github.com/sony/sonyflake"
)

// NewWorker builds a sonyflake worker. The machine id falls back to SONYFLAKE_MACHINE_ID
// and then to the process id when no private IPv4 address is available.
func NewWorker() *sonyflake.Sonyflake {
	w := sonyflake.NewSonyflake(sonyflake.Settings{})
	if w != nil {
		return w
	}
	logrus.Warn("no private ip address found for sonyflake, fallback to configured machine id")
	return sonyflake.NewSonyflake(sonyflake.Settings{MachineID: fallbackMachineID})
}

func fallbackMachineID() (uint16, error) {
	if v := os.Getenv("SONYFLAKE_MACHINE_ID"); v != "" {
		id, err := strconv.ParseUint(v, 10, 16)
		if err != nil {
			return 0, err
		}
		return uint16(id), nil
	}
	return uint16(os.Getpid()), nil
}

func NextID(idWorker *sonyflake.Sonyflake) types.ID {
	id, err := idWorker.NextID()
	if err != nil {
		panic(err)
	}
	return types.ID(id)
}
