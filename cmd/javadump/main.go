package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wippyai/jclass"
	"github.com/wippyai/jclass/classfile"
	"github.com/wippyai/jclass/descriptor"
	"github.com/wippyai/jclass/loader"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		verbose   bool
		classpath []string
	)

	root := &cobra.Command{
		Use:           "javadump",
		Short:         "Java class file inspector",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				logger, err := zap.NewDevelopment()
				if err == nil {
					loader.SetLogger(logger)
				}
			}
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().StringSliceVarP(&classpath, "classpath", "p", nil,
		"search path of directories and .jar files, used when the argument is a class name")

	root.AddCommand(
		newDumpCmd(&classpath),
		newPoolCmd(&classpath),
		newMethodsCmd(&classpath),
		newTUICmd(&classpath),
	)
	return root
}

// resolve loads the class named by arg: a path ending in ".class" is
// read directly, anything else is treated as an internal class name and
// resolved against the classpath.
func resolve(arg string, classpath []string) (*classfile.ClassFile, error) {
	if strings.HasSuffix(arg, ".class") {
		return jclass.ParseFile(arg)
	}
	if len(classpath) == 0 {
		return nil, fmt.Errorf("%q is not a .class file and no --classpath is set", arg)
	}
	l, err := loader.Open(classpath...)
	if err != nil {
		return nil, err
	}
	defer l.Close()
	cf, _, err := l.Load(strings.ReplaceAll(arg, ".", "/"))
	return cf, err
}

func newDumpCmd(classpath *[]string) *cobra.Command {
	return &cobra.Command{
		Use:   "dump <classfile|classname>",
		Short: "Dump the class structure",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cf, err := resolve(args[0], *classpath)
			if err != nil {
				return err
			}
			return dumpClass(cmd.OutOrStdout(), cf)
		},
	}
}

func newPoolCmd(classpath *[]string) *cobra.Command {
	return &cobra.Command{
		Use:   "pool <classfile|classname>",
		Short: "List the constant pool",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cf, err := resolve(args[0], *classpath)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for i := uint16(1); i < cf.Pool.Size(); i++ {
				entry, err := cf.Pool.Entry(classfile.RawIndex(i))
				if err != nil {
					// The unusable slot after a Long/Double.
					fmt.Fprintf(out, "%5d: (unusable)\n", i)
					continue
				}
				fmt.Fprintf(out, "%5d: %-18s %s\n", i, entry.Tag(), formatEntry(cf.Pool, entry))
			}
			return nil
		},
	}
}

func newMethodsCmd(classpath *[]string) *cobra.Command {
	return &cobra.Command{
		Use:   "methods <classfile|classname>",
		Short: "List method signatures",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cf, err := resolve(args[0], *classpath)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, m := range cf.Methods {
				sig, err := methodSignature(cf.Pool, m)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, sig)
				if code, ok := m.Code(); ok {
					fmt.Fprintf(out, "    code: %d bytes, max_stack=%d, max_locals=%d\n",
						len(code.Code), code.MaxStack, code.MaxLocals)
				}
			}
			return nil
		},
	}
}

func dumpClass(out io.Writer, cf *classfile.ClassFile) error {
	name, err := cf.ClassName()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "class %s\n", name)
	fmt.Fprintf(out, "  version: %s (Java %s)\n", cf.Version, cf.Version.Java())
	fmt.Fprintf(out, "  flags: %s\n", cf.AccessFlags)

	super, err := cf.SuperClassName()
	if err != nil {
		return err
	}
	if super != "" {
		fmt.Fprintf(out, "  extends: %s\n", super)
	}

	interfaces, err := cf.InterfaceNames()
	if err != nil {
		return err
	}
	for _, iface := range interfaces {
		fmt.Fprintf(out, "  implements: %s\n", iface)
	}
	if sf, ok := cf.SourceFile(); ok {
		fmt.Fprintf(out, "  source: %s\n", sf)
	}

	if len(cf.Fields) > 0 {
		fmt.Fprintln(out, "fields:")
		for _, f := range cf.Fields {
			sig, err := fieldSignature(cf.Pool, f)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "  %s\n", sig)
		}
	}
	if len(cf.Methods) > 0 {
		fmt.Fprintln(out, "methods:")
		for _, m := range cf.Methods {
			sig, err := methodSignature(cf.Pool, m)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "  %s\n", sig)
		}
	}
	if len(cf.Attributes) > 0 {
		fmt.Fprintln(out, "attributes:")
		for _, a := range cf.Attributes {
			name, err := a.Name(cf.Pool)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "  %s (%d bytes)\n", name, len(a.Info))
		}
	}
	return nil
}

func fieldSignature(pool *classfile.ConstantPool, f classfile.FieldInfo) (string, error) {
	name, err := f.Name(pool)
	if err != nil {
		return "", err
	}
	desc, err := f.Descriptor(pool)
	if err != nil {
		return "", err
	}
	typ, err := descriptor.ParseField(desc)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	if flags := f.AccessFlags.String(); flags != "" {
		b.WriteString(flags)
		b.WriteByte(' ')
	}
	fmt.Fprintf(&b, "%s %s", typ, name)
	return b.String(), nil
}

func methodSignature(pool *classfile.ConstantPool, m classfile.MethodInfo) (string, error) {
	name, err := m.Name(pool)
	if err != nil {
		return "", err
	}
	desc, err := m.Descriptor(pool)
	if err != nil {
		return "", err
	}
	sig, err := descriptor.ParseMethod(desc)
	if err != nil {
		return "", err
	}
	params := make([]string, len(sig.Params))
	for i, p := range sig.Params {
		params[i] = p.String()
	}
	var b strings.Builder
	if flags := m.AccessFlags.String(); flags != "" {
		b.WriteString(flags)
		b.WriteByte(' ')
	}
	fmt.Fprintf(&b, "%s %s(%s)", sig.Return, name, strings.Join(params, ", "))
	return b.String(), nil
}

// formatEntry renders a pool entry for listing, resolving references
// where the pool allows it.
func formatEntry(pool *classfile.ConstantPool, entry classfile.Entry) string {
	switch e := entry.(type) {
	case classfile.ConstantUtf8:
		return fmt.Sprintf("%q", e.String())
	case classfile.ConstantInteger:
		return fmt.Sprintf("%d", e.Value)
	case classfile.ConstantFloat:
		return fmt.Sprintf("%g", e.Value)
	case classfile.ConstantLong:
		return fmt.Sprintf("%dL", e.Value)
	case classfile.ConstantDouble:
		return fmt.Sprintf("%g", e.Value)
	case classfile.ConstantClass:
		if name, err := pool.Utf8(e.NameIndex); err == nil {
			return name
		}
		return fmt.Sprintf("#%d", e.NameIndex)
	case classfile.ConstantString:
		if s, err := pool.Utf8(e.ValueIndex); err == nil {
			return fmt.Sprintf("%q", s)
		}
		return fmt.Sprintf("#%d", e.ValueIndex)
	case classfile.ConstantNameAndType:
		name, nameErr := pool.Utf8(e.NameIndex)
		desc, descErr := pool.Utf8(e.DescriptorIndex)
		if nameErr == nil && descErr == nil {
			return name + ":" + desc
		}
		return fmt.Sprintf("#%d:#%d", e.NameIndex, e.DescriptorIndex)
	case classfile.ConstantFieldRef:
		if ref, err := pool.ClassName(e.ClassIndex); err == nil {
			return ref + refSuffix(pool, e.NameAndTypeIndex)
		}
		return ""
	case classfile.ConstantMethodRef:
		if ref, err := pool.ClassName(e.ClassIndex); err == nil {
			return ref + refSuffix(pool, e.NameAndTypeIndex)
		}
		return ""
	case classfile.ConstantInterfaceMethodRef:
		if ref, err := pool.ClassName(e.ClassIndex); err == nil {
			return ref + refSuffix(pool, e.NameAndTypeIndex)
		}
		return ""
	case classfile.ConstantMethodHandle:
		return fmt.Sprintf("%s #%d", classfile.RefKindName(e.ReferenceKind), e.ReferenceIndex)
	case classfile.ConstantMethodType:
		if desc, err := pool.Utf8(e.DescriptorIndex); err == nil {
			return desc
		}
		return fmt.Sprintf("#%d", e.DescriptorIndex)
	case classfile.ConstantInvokeDynamic:
		return fmt.Sprintf("bootstrap=%d%s", e.BootstrapMethodAttrIndex,
			refSuffix(pool, e.NameAndTypeIndex))
	default:
		return ""
	}
}

func refSuffix(pool *classfile.ConstantPool, nat classfile.Index[classfile.ConstantNameAndType]) string {
	entry, err := nat.Resolve(pool)
	if err != nil {
		return fmt.Sprintf(".#%d", nat)
	}
	name, nameErr := pool.Utf8(entry.NameIndex)
	desc, descErr := pool.Utf8(entry.DescriptorIndex)
	if nameErr != nil || descErr != nil {
		return fmt.Sprintf(".#%d", nat)
	}
	return "." + name + ":" + desc
}
