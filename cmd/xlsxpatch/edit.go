package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ukaji3/xlsxpatch/pkg/xlsxpatch"
)

var (
	showLink  bool
	valueType string
)

func newSheetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sheets [input.xlsx]",
		Short: "List sheets with their worksheet numbers",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := openPackage(args[0])
			if err != nil {
				return err
			}
			defer p.Discard()

			count, err := p.WorksheetCount()
			if err != nil {
				return err
			}
			for pos := 1; pos <= count; pos++ {
				name, _, err := p.WorksheetName(pos)
				if err != nil {
					return err
				}
				number, err := p.WorksheetNumber(name)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\tsheet%d.xml\n", pos, name, number)
			}
			return nil
		},
	}
}

func newGetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get [input.xlsx] [sheet] [cell]",
		Short: "Print the formula or value of a cell",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := openPackage(args[0])
			if err != nil {
				return err
			}
			defer p.Discard()

			sheet, err := resolveSheet(p, args[1])
			if err != nil {
				return err
			}
			cell, err := p.Cell(sheet, args[2], xlsxpatch.ModeNil)
			if err != nil || cell == nil {
				return err
			}

			out := cmd.OutOrStdout()
			if showLink {
				target, _, err := cell.Hyperlink()
				if err != nil {
					return err
				}
				fmt.Fprintln(out, target)
				return nil
			}
			if f, ok := cell.Formula(); ok {
				fmt.Fprintln(out, f)
				return nil
			}
			v, err := cell.Value()
			if err != nil {
				return err
			}
			if v != nil {
				fmt.Fprintln(out, v)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&showLink, "link", false, "Print the hyperlink target instead of the value")
	return cmd
}

func newSetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set [input.xlsx] [sheet] [cell] [value]",
		Short: "Write a value, formula or hyperlink target into a cell",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := openPackage(args[0])
			if err != nil {
				return err
			}

			if err := setCell(p, args[1], args[2], args[3]); err != nil {
				p.Discard()
				return err
			}
			if err := p.Save(true); err != nil {
				return fmt.Errorf("save failed: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&valueType, "type", "t", "string", "Value type: string, number, int, formula, hyperlink")
	return cmd
}

func setCell(p *xlsxpatch.Package, sheetArg, ref, value string) error {
	sheet, err := resolveSheet(p, sheetArg)
	if err != nil {
		return err
	}
	mode := xlsxpatch.ModeCreate
	if valueType == "hyperlink" {
		mode = xlsxpatch.ModeError
	}
	cell, err := p.Cell(sheet, ref, mode)
	if err != nil {
		return err
	}

	switch valueType {
	case "string":
		return cell.SetString(value)
	case "number":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid number %q: %w", value, err)
		}
		return cell.SetFloat(f)
	case "int":
		i, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid integer %q: %w", value, err)
		}
		return cell.SetInt(i)
	case "formula":
		return cell.SetFormula(value)
	case "hyperlink":
		ok, err := cell.SetHyperlink(value)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("cell %s has no hyperlink", cell.Name())
		}
		return nil
	default:
		return fmt.Errorf("invalid type: %s (must be string, number, int, formula or hyperlink)", valueType)
	}
}

func newReplaceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "replace [input.xlsx] [pattern] [replacement]",
		Short: "Replace a regular expression in every shared string",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := openPackage(args[0])
			if err != nil {
				return err
			}

			n, err := p.TextReplaceString(args[1], args[2])
			if err != nil {
				p.Discard()
				return err
			}
			if err := p.Save(true); err != nil {
				return fmt.Errorf("save failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d replaced\n", n)
			return nil
		},
	}
}

func newCalcCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "calc [input.xlsx] [on|off]",
		Short: "Show or set the full-calculation-on-load flag",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := openPackage(args[0])
			if err != nil {
				return err
			}

			if len(args) == 1 {
				defer p.Discard()
				on, err := p.FullCalcOnLoad()
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), on)
				return nil
			}

			var on bool
			switch args[1] {
			case "on":
				on = true
			case "off":
			default:
				p.Discard()
				return fmt.Errorf("invalid flag value: %s (must be on or off)", args[1])
			}
			if err := p.SetFullCalcOnLoad(on); err != nil {
				p.Discard()
				return err
			}
			if err := p.Save(true); err != nil {
				return fmt.Errorf("save failed: %w", err)
			}
			return nil
		},
	}
}
