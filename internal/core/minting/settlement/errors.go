package settlement

import (
	"fmt"
	"math/big"

	"github.com/mintforge/v1/pkg/types"
)

// errInsufficientCustody 托管余额不足以覆盖应付金额
// 出现即意味着账本不变量被破坏，属于需要人工介入的严重异常
func errInsufficientCustody(key types.ProjectKey, custody, required *big.Int) error {
	return fmt.Errorf("项目 %s 托管余额不足: custody=%s required=%s", key, custody, required)
}
