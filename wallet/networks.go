package wallet

// UnknownNetworkName is the display name of a chain missing from the table.
const UnknownNetworkName = "Unknown Network"

// supportedNetworks maps hex chain ids, exactly as the provider reports
// them, to display names. Extending support means extending this table.
var supportedNetworks = map[string]string{
	"0x1":      "Ethereum Mainnet",
	"0x5":      "Goerli Testnet",
	"0xaa36a7": "Sepolia Testnet",
	"0x89":     "Polygon Mainnet",
	"0x13881":  "Polygon Mumbai Testnet",
	"0x38":     "BSC Mainnet",
	"0x61":     "BSC Testnet",
}

// Network describes the chain the provider is on.
type Network struct {
	ChainID   string
	Name      string
	Supported bool
}

// NetworkFor builds the descriptor for chainID.
func NetworkFor(chainID string) *Network {
	name, ok := supportedNetworks[chainID]
	if !ok {
		name = UnknownNetworkName
	}
	return &Network{ChainID: chainID, Name: name, Supported: ok}
}

// SupportedChainIDs returns a copy of the table keys.
func SupportedChainIDs() []string {
	ids := make([]string, 0, len(supportedNetworks))
	for id := range supportedNetworks {
		ids = append(ids, id)
	}
	return ids
}
