// Package contracts holds the ABI surfaces of the on-chain collaborators:
// the lock (one membership product), the ERC-20 payment token, and the
// swap purchaser that wraps a purchase inside a router-mediated swap.
package contracts

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

const lockJSON = `[
	{"type":"function","name":"keyPrice","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"tokenAddress","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]},
	{"type":"function","name":"publicLockVersion","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint16"}]},
	{"type":"function","name":"purchase","stateMutability":"payable","inputs":[{"name":"_values","type":"uint256[]"},{"name":"_recipients","type":"address[]"},{"name":"_referrers","type":"address[]"},{"name":"_keyManagers","type":"address[]"},{"name":"_data","type":"bytes[]"}],"outputs":[{"name":"","type":"uint256[]"}]},
	{"type":"function","name":"purchaseFor","stateMutability":"payable","inputs":[{"name":"_value","type":"uint256"},{"name":"_recipient","type":"address"},{"name":"_referrer","type":"address"},{"name":"_keyManager","type":"address"},{"name":"_data","type":"bytes"}],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"renewKeyFor","stateMutability":"payable","inputs":[{"name":"_value","type":"uint256"},{"name":"_recipient","type":"address"},{"name":"_referrer","type":"address"},{"name":"_data","type":"bytes"}],"outputs":[]},
	{"type":"event","name":"Transfer","inputs":[{"name":"from","type":"address","indexed":true},{"name":"to","type":"address","indexed":true},{"name":"tokenId","type":"uint256","indexed":true}]},
	{"type":"event","name":"KeyExtended","inputs":[{"name":"tokenId","type":"uint256","indexed":true},{"name":"newTimestamp","type":"uint256","indexed":false}]}
]`

const erc20JSON = `[
	{"type":"function","name":"decimals","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint8"}]},
	{"type":"function","name":"balanceOf","stateMutability":"view","inputs":[{"name":"owner","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"allowance","stateMutability":"view","inputs":[{"name":"owner","type":"address"},{"name":"spender","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"approve","stateMutability":"nonpayable","inputs":[{"name":"spender","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]}
]`

const swapPurchaserJSON = `[
	{"type":"function","name":"swapAndCall","stateMutability":"payable","inputs":[{"name":"_lock","type":"address"},{"name":"_srcToken","type":"address"},{"name":"_amount","type":"uint256"},{"name":"_amountInMax","type":"uint256"},{"name":"_swapRouter","type":"address"},{"name":"_swapCalldata","type":"bytes"},{"name":"_callData","type":"bytes"}],"outputs":[]}
]`

// Parsed ABIs, shared by the call builder, the resolvers and the tests.
var (
	Lock          = mustParse(lockJSON)
	ERC20         = mustParse(erc20JSON)
	SwapPurchaser = mustParse(swapPurchaserJSON)
)

func mustParse(s string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(s))
	if err != nil {
		panic(err)
	}

	return parsed
}

// BatchPurchaseVersion is the first lock version whose purchase capability
// takes batched per-recipient arrays.
const BatchPurchaseVersion = 11
