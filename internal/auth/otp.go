package auth

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strconv"
)

// otpCodeMin / otpCodeMax は確認コードの範囲。常に6桁になる。
const (
	otpCodeMin = 100000
	otpCodeMax = 999999
)

// generateOTPCode は[100000, 999999]の一様乱数から6桁の確認コードを生成する。
// 乱数源はcrypto/randを使用する。
func generateOTPCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(otpCodeMax-otpCodeMin+1))
	if err != nil {
		return "", fmt.Errorf("failed to generate otp code: %w", err)
	}
	return strconv.FormatInt(n.Int64()+otpCodeMin, 10), nil
}
