package state

var (
	tokenMintPrefix    = []byte("token/mint/")
	tokenAccountPrefix = []byte("token/account/")
	metadataPrefix     = []byte("metadata/record/")
	marketPoolPrefix   = []byte("market/pool/")
	marketMgrPrefix    = []byte("market/manager/")
	marketPotPrefix    = []byte("market/pot/")
	marketAuctPrefix   = []byte("market/auction/")
	modulePausePrefix  = []byte("system/pause/")
)

func prefixed(prefix []byte, key [32]byte) []byte {
	out := make([]byte, 0, len(prefix)+len(key))
	out = append(out, prefix...)
	out = append(out, key[:]...)
	return out
}
