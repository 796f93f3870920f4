package cli

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/hypertask-network/hypertask/internal/daemon"
	"github.com/hypertask-network/hypertask/internal/wallet"
)

func init() {
	walletCmd.AddCommand(walletDepositCmd)
	walletCmd.AddCommand(walletClaimCmd)
	rootCmd.AddCommand(walletCmd)
}

var walletCmd = &cobra.Command{
	Use:   "wallet",
	Short: "Show the balance and recent transactions",
	RunE:  runWallet,
}

var walletDepositCmd = &cobra.Command{
	Use:   "deposit AMOUNT",
	Short: "Deposit HYPER into the wallet",
	Args:  cobra.ExactArgs(1),
	RunE:  runWalletDeposit,
}

var walletClaimCmd = &cobra.Command{
	Use:   "claim",
	Short: "Claim the demo reward",
	RunE:  runWalletClaim,
}

func runWallet(cmd *cobra.Command, args []string) error {
	d, err := daemon.New(rootCmd.Version)
	if err != nil {
		return err
	}
	defer d.Close()

	w := d.Wallet.Balance()
	fmt.Printf("Total: %s   Locked: %s   Available: %s\n\n",
		hyper(w.Total), hyper(w.Locked), hyper(w.Available()))

	txs, err := d.Wallet.Transactions(20)
	if err != nil {
		return err
	}
	if len(txs) == 0 {
		fmt.Println("No transactions yet.")
		return nil
	}

	tw := newTable()
	tw.AppendHeader(table.Row{"When", "Type", "Amount", "Description", "Status"})
	for _, tx := range txs {
		tw.AppendRow(table.Row{
			tx.Timestamp.Format("2006-01-02 15:04"),
			tx.Type,
			fmt.Sprintf("%+.2f", tx.Signed()),
			tx.Description,
			tx.Status,
		})
	}
	tw.Render()
	return nil
}

func runWalletDeposit(cmd *cobra.Command, args []string) error {
	amount, err := wallet.ParseAmount(args[0])
	if err != nil {
		return err
	}

	d, err := daemon.New(rootCmd.Version)
	if err != nil {
		return err
	}
	defer d.Close()

	w, err := d.Wallet.Deposit(amount)
	if err != nil {
		return err
	}
	fmt.Printf("Deposited %s. Balance: %s\n", hyper(amount), hyper(w.Total))
	return nil
}

func runWalletClaim(cmd *cobra.Command, args []string) error {
	d, err := daemon.New(rootCmd.Version)
	if err != nil {
		return err
	}
	defer d.Close()

	w, err := d.Wallet.Claim()
	if err != nil {
		return err
	}
	fmt.Printf("Claimed %s. Balance: %s\n", hyper(wallet.ClaimReward), hyper(w.Total))
	return nil
}
