package shop

import (
	"errors"
	"fmt"

	"github.com/julianstephens/streaklit/internal/cli"
	"github.com/julianstephens/streaklit/internal/shop"
	"github.com/julianstephens/streaklit/internal/tui"
)

type ShopCmd struct {
	Items ShopItemsCmd `cmd:"" help:"List items for sale." default:"1"`
	Owned ShopOwnedCmd `cmd:"" help:"List items you own."`
	Buy   ShopBuyCmd   `cmd:"" help:"Spend coins on an item."`
}

type ShopItemsCmd struct{}

func (c *ShopItemsCmd) Run(ctx *cli.Context) error {
	profile, err := ctx.Shop.Balance(ctx.Ctx(), ctx.UserID)
	if err != nil {
		return err
	}
	items, err := ctx.Shop.Items(ctx.Ctx())
	if err != nil {
		return err
	}
	owned, err := ctx.Shop.Owned(ctx.Ctx(), ctx.UserID)
	if err != nil {
		return err
	}
	have := make(map[string]bool, len(owned))
	for _, ui := range owned {
		have[ui.ItemID] = true
	}

	ctx.Printf("%s %d coins\n\n", cli.NoticeStyle.Render("Balance:"), profile.TotalCoins)
	for _, it := range items {
		price := fmt.Sprintf("%5d", it.Cost)
		if have[it.ID] {
			price = cli.SuccessStyle.Render("owned")
		}
		ctx.Printf("%s  %-16s %s  %s\n", price, it.Name, cli.MutedStyle.Render(it.ID), it.Description)
	}
	return nil
}

type ShopOwnedCmd struct{}

func (c *ShopOwnedCmd) Run(ctx *cli.Context) error {
	owned, err := ctx.Shop.Owned(ctx.Ctx(), ctx.UserID)
	if err != nil {
		return err
	}
	if len(owned) == 0 {
		ctx.Println("You don't own any items yet.")
		return nil
	}
	for _, ui := range owned {
		ctx.Printf("%s  %s  %s\n", ui.PurchasedAt.Format("2006-01-02"), ui.Item.Name, cli.MutedStyle.Render(ui.Item.Description))
	}
	return nil
}

type ShopBuyCmd struct {
	Item string `arg:"" help:"Item ID."`
	Yes  bool   `help:"Skip the confirmation prompt." short:"y"`
}

func (c *ShopBuyCmd) Run(ctx *cli.Context) error {
	item, err := ctx.Store.GetItem(ctx.Ctx(), c.Item)
	if err != nil {
		return err
	}

	if !c.Yes {
		profile, err := ctx.Shop.Balance(ctx.Ctx(), ctx.UserID)
		if err != nil {
			return err
		}
		fm := &tui.ConfirmForm{}
		desc := fmt.Sprintf("Costs %d coins. You have %d.", item.Cost, profile.TotalCoins)
		if err := tui.NewConfirmForm(fmt.Sprintf("Buy %s?", item.Name), desc, fm).Run(); err != nil {
			return err
		}
		if !fm.Confirmed {
			ctx.Println("Cancelled.")
			return nil
		}
	}

	if _, err := ctx.Shop.Purchase(ctx.Ctx(), ctx.UserID, item.ID); err != nil {
		if errors.Is(err, shop.ErrAlreadyOwned) {
			ctx.Printf("You already own %s.\n", item.Name)
			return nil
		}
		return err
	}

	profile, err := ctx.Shop.Balance(ctx.Ctx(), ctx.UserID)
	if err != nil {
		return err
	}
	ctx.Printf("%s %s (%d coins left)\n", cli.SuccessStyle.Render("Purchased"), item.Name, profile.TotalCoins)
	return nil
}
